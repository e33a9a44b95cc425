package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/gocdt/construct"
	"github.com/phil-mansfield/gocdt/io"
	"github.com/phil-mansfield/gocdt/report"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	fg.stopProfile()

	if fg.log != nil {
		err := fg.log.Close()
		fg.log = nil
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

// Fatal writes the profile and then exits through log.Fatal. The log file
// stays open so that the message reaches it.
func (fg *FileGroup) Fatal(msg string) {
	fg.stopProfile()
	log.Fatal(msg)
}

func (fg *FileGroup) stopProfile() {
	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		fg.prof = nil
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		cdt, exampleConfig string
	)
	vars := map[string]*string{
		"CDT":           &cdt,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&cdt, "CDT", "",
		"Configuration file for [CDT] mode, which builds a foliated "+
			"Delaunay triangulation.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. The only accepted argument is 'CDT'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "CDT":
		wrap := io.DefaultCDTWrapper()
		err := gcfg.ReadFileInto(wrap, cdt)
		if err != nil {
			log.Fatal(err.Error())
		}
		con := &wrap.CDT

		if !con.ValidOutput() {
			log.Fatal("Invalid/non-existent 'Output' value.")
		} else if !con.ValidTopology() {
			log.Fatal("Invalid/non-existent 'Topology' value.")
		} else if !con.ValidSimplices() {
			log.Fatal("Invalid/non-existent 'Simplices' value.")
		} else if !con.ValidTimeslices() {
			log.Fatal("Invalid/non-existent 'Timeslices' value.")
		} else if !con.ValidPasses() {
			log.Fatal("Invalid 'Passes' value.")
		} else if !con.ValidMode() {
			log.Fatal("Invalid 'Mode' value.")
		} else if !con.ValidKernel() {
			log.Fatal("Invalid 'Kernel' value.")
		} else if !con.ValidMaxAttempts() {
			log.Fatal("Invalid 'MaxAttempts' value.")
		} else if !con.ValidRandomSeed() {
			log.Fatal("Invalid 'RandomSeed' value.")
		}

		if strings.EqualFold(con.Mode, "Foliated") {
			if !con.ValidSeed() {
				log.Fatal(
					"You must set 'Seed' to one of 'Minimal', 'Sphere', " +
						"or 'File' in Foliated mode.",
				)
			} else if strings.EqualFold(con.Seed, "File") && !con.ValidSeedFile() {
				log.Fatal("You must set 'SeedFile' when 'Seed' is 'File'.")
			}
		} else if !con.ValidRadius() {
			log.Fatal("Invalid 'Radius' value.")
		}

		cdtMain(con)

	case "ExampleConfig":
		switch exampleConfig {
		case "CDT":
			fmt.Println(io.ExampleCDTFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only " +
					"recognized argument is 'CDT'.",
			)
		}
	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive error
// if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gocdt "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// cdtMain builds a triangulation based on the input config file and writes it
// to the output directory.
func cdtMain(con *io.CDTConfig) {
	fg := setupFiles(&con.SharedConfig)
	defer fg.Close()

	p, err := con.Params()
	if err != nil {
		fg.Fatal(err.Error())
	}

	user := os.Getenv("USER")
	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	log.Printf("Topology: %s", p.Topology)
	log.Printf("Number of simplices: %d", p.Simplices)
	log.Printf("Number of timeslices: %d", p.Timeslices)
	log.Printf("Dimensionality: %d", p.Dimension)
	log.Printf("Alpha: %g", p.Alpha)
	log.Printf("K: %g", p.K)
	log.Printf("Lambda: %g", p.Lambda)
	log.Printf("User: %s", user)
	log.Printf("Hostname: %s", hostname)

	reg := prometheus.NewRegistry()
	reporter := report.Multi{
		report.NewLog(con.ProgressInterval),
		report.NewPrometheus(reg),
	}

	t0 := time.Now()
	res, err := construct.NewBuilder(p, construct.WithReporter(reporter)).
		Build(context.Background())

	if con.ValidMetricsFile() {
		if merr := prometheus.WriteToTextfile(con.MetricsFile, reg); merr != nil {
			fg.Fatal(merr.Error())
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, construct.ErrNotConverged) && con.AllowPartial:
		log.Printf("Writing partial triangulation: %s", err.Error())
	case errors.Is(err, construct.ErrValidation) && res != nil:
		log.Printf(
			"Triangulation has %d vertices and %d finite cells in %d dimensions.",
			res.Validation.FiniteVertices, res.Validation.FiniteCells,
			res.Validation.Dimension,
		)
		fg.Fatal(err.Error())
	default:
		fg.Fatal(err.Error())
	}

	log.Printf(
		"Built %d finite cells: %d (3,1), %d (2,2), %d (1,3), "+
			"%d timelike edges.",
		res.Validation.FiniteCells, res.Classification.ThreeOne,
		res.Classification.TwoTwo, res.Classification.OneThree,
		len(res.Classification.TimelikeEdges),
	)
	if n := len(res.Classification.Errors); n > 0 {
		log.Printf("%d cells could not be classified.", n)
	}

	triFile, summaryFile, err := io.WriteRun(con.Output, res, user, hostname)
	if err != nil {
		fg.Fatal(err.Error())
	}
	log.Printf("Wrote %s and %s.", triFile, summaryFile)
	log.Printf("Construction took %.3g seconds.", time.Since(t0).Seconds())

	// Ergodic moves aren't implemented, so the passes are only reported.
	log.Printf("Now performing %d passes of ergodic moves.", p.Passes)
}

// setupFiles creates the log and profile files requested by con.
func setupFiles(con *io.SharedConfig) *FileGroup {
	fg := &FileGroup{}
	var err error

	// Set up log file.
	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	// Set up profile file.
	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}
