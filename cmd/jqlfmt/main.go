// Command jqlfmt reads a JQL query and prints its canonical round-tripped
// form, the way gofmt does for Go source.
//
// Run with:
//
//	echo '/users/[age > 18] | apply :patch' | go run ./cmd/jqlfmt
//	go run ./cmd/jqlfmt -query '/foo/[bar = 42]'
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/docstore/jqldb"
)

func main() {
	query := flag.String("query", "", "query text; reads stdin if omitted")
	showPlaceholders := flag.Bool("placeholders", false, "print the placeholder count")
	flag.Parse()

	q := *query
	if q == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("jqlfmt: read stdin: %v", err)
		}
		q = string(raw)
	}

	sess, err := jqldb.Compile(q)
	if err != nil {
		log.Fatalf("jqlfmt: %v", err)
	}

	out, err := sess.String()
	if err != nil {
		log.Fatalf("jqlfmt: print: %v", err)
	}
	fmt.Print(out)

	if *showPlaceholders {
		fmt.Fprintf(os.Stderr, "placeholders: %d\n", sess.PlaceholderCount())
	}
}
