package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"highcard-server/internal/config"

	"gopkg.in/yaml.v2"
)

var out = flag.String("o", "", "write the config to a file instead of stdout")

func main() {
	flag.Parse()

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			panic(err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	fmt.Fprintln(w, "# highcard-server configuration")
	fmt.Fprintln(w, "# every value can also be set with a HIGHCARD_* environment variable")
	if err := yaml.NewEncoder(w).Encode(config.DefaultConfig()); err != nil {
		panic(err)
	}
}
