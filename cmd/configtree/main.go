// Command configtree reads and writes typed application settings.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lixenwraith/configtree"
	"github.com/lixenwraith/configtree/internal/cmd"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the exit status: 1 for an error, 2 when
// an enforced read fails.
func run(args []string, in io.Reader, out, errOut io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			var enforced *configtree.EnforcedReadError
			if err, ok := r.(error); ok && errors.As(err, &enforced) {
				fmt.Fprintln(errOut, "Error:", enforced)
				code = 2
				return
			}
			panic(r)
		}
	}()

	if err := cmd.ExecuteArgs(args, in, out, errOut); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}
