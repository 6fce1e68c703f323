// Command xmlcore is a small CLI front end over the parser/decode/tree/
// canon/query packages: a bare os.Args command switch reading from a file
// argument or stdin.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(0)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "validate":
		cliValidate(args)
	case "events":
		cliEvents(args)
	case "tree":
		cliTree(args)
	case "canon":
		cliCanon(args)
	case "json":
		cliJSON(args)
	default:
		fmt.Printf("Error: unknown command %q\n", command)
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("xmlcore - streaming well-formedness XML parser")
	fmt.Println("Usage: xmlcore <command> [file]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate <file>  : check well-formedness, print OK or the parser.Error code")
	fmt.Println("  events   <file>  : dump the SAX-style event trace, one line per callback")
	fmt.Println("  tree     <file>  : re-serialize the materialized tree as XML")
	fmt.Println("  canon    <file>  : emit Exclusive Canonical XML")
	fmt.Println("  json     <file>  : convert the root element to JSON")
	fmt.Println()
	fmt.Println("<file> may be omitted to read from stdin.")
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
