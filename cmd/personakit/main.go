package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// errNoChange reports a soft failure: the named profile, version or entry
// does not exist.
var errNoChange = errors.New("nothing changed, check the profile, version or entry name")

func main() {
	Execute()
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// check exits on err and on a soft failure.
func check(msg string, ok bool, err error) {
	if err != nil {
		fatal(msg, err)
	}
	if !ok {
		fatal(msg, errNoChange)
	}
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		fatal("Failed to encode JSON", err)
	}
}
