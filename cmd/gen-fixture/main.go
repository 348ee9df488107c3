package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/pkg/errors"
	"github.com/ryanolee/go-chaff"
)

var (
	num      int
	outDir   string
	names    []string
	validate bool
)

func processParameters() {
	var (
		_num      = flag.Int("n", 1, "number of generated bodies per schema")
		_outDir   = flag.String("out", "", "output directory. prints to stdout when empty")
		_names    = flag.String("schemas", "", "schema names seperated with comma. (available: "+strings.Join(avisa.SchemaNames(), ",")+")")
		_validate = flag.Bool("validate", true, "drop bodies the response schema rejects")
	)

	flag.Parse()

	num = *_num
	outDir = *_outDir
	validate = *_validate

	names = avisa.SchemaNames()
	if *_names != "" {
		names = strings.Split(*_names, ",")
	}
}

func main() {
	processParameters()

	for _, name := range names {
		bodies, skipped, err := generate(name, num, validate)
		if err != nil {
			log.Fatal(err)
		}
		if skipped > 0 {
			log.Printf("skipped %d %s bodies rejected by the schema", skipped, name)
		}

		for i, body := range bodies {
			if err := emit(name, i, body); err != nil {
				log.Fatal(err)
			}
		}
	}
}

// generate returns n bodies for the named response schema, minus the ones
// dropped by validation.
func generate(name string, n int, validate bool) (bodies [][]byte, skipped int, err error) {
	schema, ok := avisa.ResponseSchema(name)
	if !ok {
		return nil, 0, errors.Errorf("unknown schema %q", name)
	}

	generator, err := chaff.ParseSchema([]byte(schema), &chaff.ParserOptions{})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "parsing %s schema", name)
	}

	for i := 0; i < n; i++ {
		body, err := json.Marshal(generator.Generate(&chaff.GeneratorOptions{}))
		if err != nil {
			return nil, 0, errors.Wrap(err, "marshalling body")
		}

		if validate && avisa.ValidateResponse(name, body) != nil {
			skipped++
			continue
		}

		bodies = append(bodies, body)
	}

	return bodies, skipped, nil
}

func emit(name string, idx int, body []byte) error {
	if outDir == "" {
		fmt.Printf("%s\t%s\n", name, body)
		return nil
	}

	path := filepath.Join(outDir, fmt.Sprintf("%s-%03d.json", name, idx))
	return os.WriteFile(path, body, 0o644)
}
