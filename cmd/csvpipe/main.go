package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/linecsv/linecsv"
)

var log = logrus.New()

func main() {
	app := cli.NewApp()
	app.Name = "csvpipe"
	app.Usage = "normalize or validate CSV streams"
	app.ArgsUsage = "[input file, stdin if omitted]"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "delimiter, d",
			Usage: "Input field delimiter (single character)",
			Value: ",",
		},
		cli.StringFlag{
			Name:  "quote, q",
			Usage: "Input quote character",
			Value: `"`,
		},
		cli.StringFlag{
			Name:  "comment, c",
			Usage: "Comment character; lines starting with it are dropped",
			Value: "#",
		},
		cli.StringFlag{
			Name:  "out-delimiter",
			Usage: "Output field delimiter (defaults to the input delimiter)",
		},
		cli.BoolFlag{
			Name:  "lf",
			Usage: "Terminate output records with LF instead of CRLF",
		},
		cli.BoolFlag{
			Name:  "check",
			Usage: "Parse only; report errors without writing output",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "Enable debug logging",
		},
	}
	app.Action = pipe

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("csvpipe failed")
	}
}

func singleChar(c *cli.Context, name string) (byte, error) {
	v := c.String(name)
	if len(v) != 1 {
		return 0, cli.NewExitError("flag --"+name+" must be a single character", 2)
	}
	return v[0], nil
}

func pipe(c *cli.Context) error {
	if c.Bool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	delim, err := singleChar(c, "delimiter")
	if err != nil {
		return err
	}
	quote, err := singleChar(c, "quote")
	if err != nil {
		return err
	}
	comment, err := singleChar(c, "comment")
	if err != nil {
		return err
	}
	outDelim := delim
	if v := c.String("out-delimiter"); v != "" {
		if len(v) != 1 {
			return cli.NewExitError("flag --out-delimiter must be a single character", 2)
		}
		outDelim = v[0]
	}

	var src io.Reader = os.Stdin
	name := "stdin"
	if c.NArg() > 0 {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
		name = c.Args().First()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reader := linecsv.NewRecordReader(src)
	reader.Parser.Comma = delim
	reader.Parser.Quote = quote
	reader.Parser.Comment = comment

	var writer *linecsv.Writer
	if !c.Bool("check") {
		writer = linecsv.NewWriter(os.Stdout)
		writer.Comma = outDelim
		writer.Quote = quote
		if c.Bool("lf") {
			writer.Terminator = "\n"
		}
		defer func() {
			if err := writer.Flush(); err != nil {
				log.WithError(err).Error("flush failed")
			}
		}()
	}

	records := 0
	for {
		record, err := reader.ReadContext(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		records++
		log.WithFields(logrus.Fields{"line": reader.Line(), "fields": len(record)}).Debug("record")
		if writer != nil {
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	log.WithFields(logrus.Fields{"input": name, "records": records}).Info("done")
	return nil
}
