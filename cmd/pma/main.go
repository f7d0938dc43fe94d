// Copyright 2023 The pma Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Pma transforms performance sample files into time series suitable
// for graphical analysis.
//
// Usage:
//
//	pma [options] inputfile ...
//
// Each input file holds stanza-format samples as produced by a
// collector script. The first input file fixes the schema of the run:
// its header declares the classes and metrics, and its first data
// cycle fixes the device population. Every input file is then read
// through the same model, accumulating running aggregates and
// re-emitting each data cycle to the selected outputs.
//
// The -s option writes every active series into one wide delimited
// table. The -m option writes one narrow file per active series into
// a directory, along with a derived "clockticks" series that charting
// tools without a native time axis can use to render grid lines. The
// -chart and -html options render the same series as PNG charts or as
// a single interactive HTML report.
//
// A series is active when the configuration file (-c) gives it a
// non-zero scale, either per metric ("cpu_us 100") or per device
// ("tps_sda 200"). Emitted values are normalized onto a common
// full-scale axis. The configuration file also overrides tunable
// parameters such as delimiters, date formats and the clockticks
// levels; -p prints the resolved parameter table.
//
// The input path "-" denotes standard input. Standard input cannot be
// rewound, so when it is the first input the data cycle consumed by
// device discovery is not aggregated.
//
// Exit code 0 on normal completion, 1 on any fatal condition.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pmatools/pma/pmaconf"
	"github.com/pmatools/pma/pmafmt"
	"github.com/pmatools/pma/pmaseries"
)

// usage prints the flag summary. It does not exit: the flag package
// exits 0 itself when help was requested explicitly, and main exits 1
// when no inputs were given.
func usage() {
	fmt.Fprintf(os.Stderr, "usage: pma [options] inputfile ...\n")
	fmt.Fprintf(os.Stderr, "options:\n")
	flag.PrintDefaults()
}

var (
	flagConfig   = flag.String("c", "", "read configuration from `file`")
	flagTable    = flag.String("s", "", "write all series to a single delimited `file`")
	flagDir      = flag.String("m", "", "write one file per series into `directory`")
	flagChartDir = flag.String("chart", "", "write a PNG chart per series into `directory`")
	flagHTML     = flag.String("html", "", "write an HTML report with a chart per series to `file`")
	flagSummary  = flag.Bool("d", false, "print a summary of all metrics and devices")
	flagParams   = flag.Bool("p", false, "print the resolved parameter table")
	flagVerbose  = flag.Bool("v", false, "print progress diagnostics")
)

func main() {
	log.SetPrefix("pma: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if *flagTable == "" && *flagDir == "" && *flagChartDir == "" && *flagHTML == "" {
		log.Print("warning: no output has been specified")
	}

	params, err := pmaconf.NewParams()
	if err != nil {
		log.Fatal(err)
	}

	var (
		schema *pmafmt.Schema
		table  *pmaseries.TableWriter
		series *pmaseries.SeriesWriter
		charts *pmaseries.ChartDir
		html   *pmaseries.HTMLReport
		lastTS int64
	)

	for _, path := range flag.Args() {
		if *flagVerbose {
			log.Printf("processing input file %s", path)
		}
		in, err := pmafmt.OpenInput(path)
		if err != nil {
			log.Printf("skipping input file: %v", err)
			continue
		}
		sc := pmafmt.NewScanner(in.Reader(), in.Name)

		if schema == nil {
			// The first readable input fixes the schema and the
			// device population of the whole run.
			schema, err = pmafmt.ParseHeader(sc)
			if err != nil {
				log.Fatal(err)
			}
			if err := pmafmt.DiscoverDevices(sc, schema); err != nil {
				log.Fatal(err)
			}
			if in.Rewind() {
				sc = pmafmt.NewScanner(in.Reader(), in.Name)
			} else if *flagVerbose {
				log.Printf("first data cycle skipped: %s cannot be rewound", in.Name)
			}

			if *flagConfig != "" {
				if err := pmaconf.Load(*flagConfig, params, schema, log.Printf); err != nil {
					log.Fatal(err)
				}
			}

			if *flagTable != "" {
				if table, err = pmaseries.CreateTable(*flagTable, schema, params); err != nil {
					log.Fatal(err)
				}
			}
			if *flagDir != "" {
				if series, err = pmaseries.CreateSeriesDir(*flagDir, schema, params); err != nil {
					log.Fatal(err)
				}
			}
			if *flagChartDir != "" {
				if charts, err = pmaseries.CreateChartDir(*flagChartDir, schema, params); err != nil {
					log.Fatal(err)
				}
			}
			if *flagHTML != "" {
				html = pmaseries.CreateHTMLReport(*flagHTML, schema, params)
			}
		}

		cr := pmafmt.NewCycleReader(sc, schema)
		for cr.Scan() {
			ts := cr.Timestamp()
			lastTS = ts
			if table != nil {
				if err := table.WriteCycle(ts); err != nil {
					log.Fatal(err)
				}
			}
			if series != nil {
				if err := series.WriteCycle(ts); err != nil {
					log.Fatal(err)
				}
			}
			if charts != nil {
				charts.AddCycle(ts)
			}
			if html != nil {
				html.AddCycle(ts)
			}
		}
		if err := cr.Err(); err != nil {
			log.Print(err)
		}
		in.Close()
	}

	if series != nil {
		if err := series.WriteClockticks(lastTS); err != nil {
			log.Fatal(err)
		}
		if err := series.Close(); err != nil {
			log.Fatal(err)
		}
	}
	if table != nil {
		if err := table.Close(); err != nil {
			log.Fatal(err)
		}
	}
	if charts != nil {
		if err := charts.Render(); err != nil {
			log.Fatal(err)
		}
	}
	if html != nil {
		if err := html.Render(); err != nil {
			log.Fatal(err)
		}
	}

	if *flagParams {
		params.WriteTable(os.Stdout)
	}
	if *flagSummary && schema != nil {
		pmaseries.WriteSummary(os.Stdout, schema, params)
	}
}
