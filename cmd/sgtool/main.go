// Package main provides the sgtool command line utility for track
// geometry files. It decodes, validates, edits, and charts the binary
// section graph format, and keeps a sqlite catalog of known tracks.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/racetools/sgkit/internal/profile"
	"github.com/racetools/sgkit/internal/sg"
	"github.com/racetools/sgkit/internal/trackdb"
	"github.com/racetools/sgkit/internal/version"
)

const defaultMigrationsDir = "migrations"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: sgtool <command> [flags]

Commands:
  info       print header and section summary for a track file
  validate   check structural invariants and link consistency
  export     write header and section CSV files from a track file
  import     build a track file from header and section CSV files
  flatten    set every altitude to a constant and zero all grades
  offset     shift every altitude by a signed delta
  elevation  generate a shaped elevation change across a section range
  split      split one section into two at a fractional position
  profile    chart the elevation profile along one cross-section line
  catalog    record and list tracks in the sqlite catalog
  version    print build identification

Run 'sgtool <command> -h' for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = cmdInfo(os.Args[2:])
	case "validate":
		err = cmdValidate(os.Args[2:])
	case "export":
		err = cmdExport(os.Args[2:])
	case "import":
		err = cmdImport(os.Args[2:])
	case "flatten":
		err = cmdFlatten(os.Args[2:])
	case "offset":
		err = cmdOffset(os.Args[2:])
	case "elevation":
		err = cmdElevation(os.Args[2:])
	case "split":
		err = cmdSplit(os.Args[2:])
	case "profile":
		err = cmdProfile(os.Args[2:])
	case "catalog":
		err = cmdCatalog(os.Args[2:])
	case "version":
		fmt.Printf("sgtool %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("sgtool %s: %v", os.Args[1], err)
	}
}

func readTrack(path string) (*sg.TrackModel, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	model, err := sg.Decode(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return model, raw, nil
}

func writeTrack(path string, model *sg.TrackModel) error {
	return os.WriteFile(path, sg.Encode(model), 0644)
}

// validateAndWrite runs the structural validator before encoding. Warnings
// are logged and the file still written; a fatal finding aborts the save.
func validateAndWrite(path string, model *sg.TrackModel) error {
	warnings, err := sg.Validate(model)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Printf("warning: %s", w)
	}
	return writeTrack(path, model)
}

func trackArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one track file argument, got %d", fs.NArg())
	}
	return fs.Arg(0), nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	sections := fs.Bool("sections", false, "List every section")
	fs.Parse(args)

	path, err := trackArg(fs)
	if err != nil {
		return err
	}
	model, raw, err := readTrack(path)
	if err != nil {
		return err
	}

	fmt.Printf("File:      %s (%d bytes)\n", path, len(raw))
	fmt.Printf("Filetype:  %d\n", model.Header.Filetype)
	fmt.Printf("Sections:  %d\n", model.SectionCount())
	fmt.Printf("Xsects:    %d\n", model.XsectCount())
	fmt.Printf("Length:    %d\n", model.TrackLength())
	fmt.Printf("Checksum:  %s\n", trackdb.Checksum(raw))
	fmt.Printf("DLATs:    ")
	for _, d := range model.XsectDLATs {
		fmt.Printf(" %d", d)
	}
	fmt.Println()

	if !*sections {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "sec\ttype\tstart_dlong\tlength\tradius\tfsects")
	for i, s := range model.Sections {
		kind := "line"
		if s.Kind == sg.Curve {
			kind = "curve"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n",
			i, kind, s.StartDlong, s.Length, s.Radius, len(s.FSections))
	}
	return w.Flush()
}

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Parse(args)

	path, err := trackArg(fs)
	if err != nil {
		return err
	}
	model, _, err := readTrack(path)
	if err != nil {
		return err
	}

	warnings, err := sg.Validate(model)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Printf("warning: section %d: %s\n", w.Section, w.Msg)
	}
	if len(warnings) == 0 {
		fmt.Println("ok")
	} else {
		fmt.Printf("ok with %d warning(s)\n", len(warnings))
	}
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	headerOut := fs.String("header", "header.csv", "Header CSV output path")
	sectionsOut := fs.String("sections", "sections.csv", "Sections CSV output path")
	fs.Parse(args)

	path, err := trackArg(fs)
	if err != nil {
		return err
	}
	model, _, err := readTrack(path)
	if err != nil {
		return err
	}

	hf, err := os.Create(*headerOut)
	if err != nil {
		return err
	}
	defer hf.Close()
	if err := sg.ExportHeaderCSV(hf, model); err != nil {
		return err
	}

	sf, err := os.Create(*sectionsOut)
	if err != nil {
		return err
	}
	defer sf.Close()
	if err := sg.ExportSectionsCSV(sf, model); err != nil {
		return err
	}

	log.Printf("wrote %s and %s", *headerOut, *sectionsOut)
	return nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	headerIn := fs.String("header", "header.csv", "Header CSV input path")
	sectionsIn := fs.String("sections", "sections.csv", "Sections CSV input path")
	out := fs.String("out", "", "Track file output path (required)")
	fs.Parse(args)

	if *out == "" {
		return fmt.Errorf("-out is required")
	}

	hf, err := os.Open(*headerIn)
	if err != nil {
		return err
	}
	defer hf.Close()
	sf, err := os.Open(*sectionsIn)
	if err != nil {
		return err
	}
	defer sf.Close()

	model, err := sg.ImportCSV(hf, sf)
	if err != nil {
		return err
	}
	if err := validateAndWrite(*out, model); err != nil {
		return err
	}
	log.Printf("wrote %s (%d sections)", *out, model.SectionCount())
	return nil
}

func cmdFlatten(args []string) error {
	fs := flag.NewFlagSet("flatten", flag.ExitOnError)
	alt := fs.Int("alt", 0, "Altitude applied to every cross-section")
	grade := fs.Int("grade", 0, "Grade applied to every cross-section")
	out := fs.String("out", "", "Output path (default: overwrite input)")
	fs.Parse(args)

	path, err := trackArg(fs)
	if err != nil {
		return err
	}
	model, _, err := readTrack(path)
	if err != nil {
		return err
	}

	session := sg.NewEditSession(model)
	if err := session.FlattenAll(int32(*alt), int32(*grade)); err != nil {
		return err
	}
	if *out == "" {
		*out = path
	}
	return validateAndWrite(*out, session.Model())
}

func cmdOffset(args []string) error {
	fs := flag.NewFlagSet("offset", flag.ExitOnError)
	delta := fs.Int("delta", 0, "Signed altitude delta applied everywhere")
	out := fs.String("out", "", "Output path (default: overwrite input)")
	fs.Parse(args)

	path, err := trackArg(fs)
	if err != nil {
		return err
	}
	model, _, err := readTrack(path)
	if err != nil {
		return err
	}

	session := sg.NewEditSession(model)
	if err := session.OffsetAll(int32(*delta)); err != nil {
		return err
	}
	if *out == "" {
		*out = path
	}
	return validateAndWrite(*out, session.Model())
}

func cmdElevation(args []string) error {
	fs := flag.NewFlagSet("elevation", flag.ExitOnError)
	start := fs.Int("start", 0, "First section index of the change")
	end := fs.Int("end", 0, "Section index whose boundary receives the end altitude")
	startAlt := fs.Int("start-alt", 0, "Altitude at the start boundary")
	endAlt := fs.Int("end-alt", 0, "Altitude at the end boundary")
	shapeName := fs.String("shape", "linear", "Curve shape: linear, convex, concave, s_curve")
	xsect := fs.Int("xsect", -1, "Cross-section index to modify (-1 for all)")
	out := fs.String("out", "", "Output path (default: overwrite input)")
	fs.Parse(args)

	path, err := trackArg(fs)
	if err != nil {
		return err
	}
	model, _, err := readTrack(path)
	if err != nil {
		return err
	}

	shape, err := sg.ParseCurveShape(*shapeName)
	if err != nil {
		return err
	}

	session := sg.NewEditSession(model)
	xsects := []int{*xsect}
	if *xsect < 0 {
		xsects = xsects[:0]
		for i := 0; i < model.XsectCount(); i++ {
			xsects = append(xsects, i)
		}
	}
	for _, x := range xsects {
		if err := session.GenerateElevationChange(*start, *end, x,
			float64(*startAlt), float64(*endAlt), shape); err != nil {
			return err
		}
	}

	if *out == "" {
		*out = path
	}
	return validateAndWrite(*out, session.Model())
}

func cmdSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	section := fs.Int("section", 0, "Section index to split")
	fraction := fs.Float64("fraction", 0.5, "Split position as a fraction of section length (0..1 exclusive)")
	out := fs.String("out", "", "Output path (default: overwrite input)")
	fs.Parse(args)

	path, err := trackArg(fs)
	if err != nil {
		return err
	}
	model, _, err := readTrack(path)
	if err != nil {
		return err
	}

	session := sg.NewEditSession(model)
	if err := session.SplitSection(*section, *fraction); err != nil {
		return err
	}
	if *out == "" {
		*out = path
	}
	return validateAndWrite(*out, session.Model())
}

func cmdProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	xsect := fs.Int("xsect", 0, "Cross-section index to chart")
	samples := fs.Int("samples", profile.DefaultSamplesPerSection, "Samples per section")
	htmlOut := fs.String("html", "", "Write an interactive HTML chart to this path")
	pngOut := fs.String("png", "", "Write a PNG chart to this path")
	fs.Parse(args)

	path, err := trackArg(fs)
	if err != nil {
		return err
	}
	model, _, err := readTrack(path)
	if err != nil {
		return err
	}

	data, err := profile.Build(model, *xsect, *samples)
	if err != nil {
		return err
	}

	summary := profile.Summarize(data)
	fmt.Printf("Xsect:    %d (DLAT %d)\n", data.XsectIndex, data.XsectDLAT)
	fmt.Printf("Samples:  %d\n", summary.Samples)
	fmt.Printf("Min:      %.1f\n", summary.Min)
	fmt.Printf("Max:      %.1f\n", summary.Max)
	fmt.Printf("Mean:     %.1f\n", summary.Mean)
	fmt.Printf("StdDev:   %.1f\n", summary.StdDev)

	if *htmlOut != "" {
		f, err := os.Create(*htmlOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := profile.WriteHTML(f, data); err != nil {
			return err
		}
		log.Printf("wrote %s", *htmlOut)
	}
	if *pngOut != "" {
		if err := profile.SavePNG(*pngOut, data); err != nil {
			return err
		}
		log.Printf("wrote %s", *pngOut)
	}
	return nil
}

func cmdCatalog(args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	dbPath := fs.String("db", "tracks.db", "Catalog database path")
	migrations := fs.String("migrations", defaultMigrationsDir, "Migrations directory")
	name := fs.String("name", "", "Track name for 'add' (default: file path)")
	limit := fs.Int("limit", 50, "Row limit for 'list'")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("expected a catalog action: add or list")
	}

	db, err := trackdb.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()
	if err := db.MigrateUp(*migrations); err != nil {
		return err
	}

	switch fs.Arg(0) {
	case "add":
		if fs.NArg() != 2 {
			return fmt.Errorf("usage: sgtool catalog add <track-file>")
		}
		path := fs.Arg(1)
		model, raw, err := readTrack(path)
		if err != nil {
			return err
		}
		if *name == "" {
			*name = path
		}
		id, err := db.RecordTrack(*name, model, raw)
		if err != nil {
			return err
		}
		fmt.Printf("recorded %s as %s\n", *name, id)
		return nil
	case "list":
		records, err := db.Tracks(*limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "id\tname\tsections\txsects\tlength\trecorded")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID, r.Name, r.SectionCount, r.XsectCount, r.TrackLength,
				r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown catalog action %q", fs.Arg(0))
	}
}
