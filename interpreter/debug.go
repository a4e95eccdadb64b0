package interpreter

import (
	"fmt"
	"os"
)

// printLocation prints one frame of a runtime error's call stack, innermost
// (distance 0, where the error actually happened) first.
func printLocation(distance, line int, funName string) {
	fmt.Fprintf(os.Stderr, "%5v: [line %v] in %v\n", distance, line, funName)
}
