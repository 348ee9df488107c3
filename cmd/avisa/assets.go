package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// readAssets returns one URL per non-blank line, skipping # comments.
func readAssets(r io.Reader) ([]string, error) {
	var assets []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		assets = append(assets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading asset list")
	}

	return assets, nil
}

func loadAssets(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening asset list")
	}
	defer file.Close()

	assets, err := readAssets(file)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, errors.Errorf("asset list %s is empty", path)
	}

	return assets, nil
}
