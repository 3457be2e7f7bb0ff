package check

import (
	"flag"
	"fmt"
	"io"
	"os"
)

var (
	DebugAll   = flag.Bool("debug", false, "debug all")
	DebugInfer = flag.Bool("debug-infer", false, "debug inference")
	DebugPred  = flag.Bool("debug-pred", false, "debug predicates")
	DebugExpr  = flag.Bool("debug-expr", false, "debug expression checking")

	DebugWriter io.Writer = os.Stdout
)

func InferPrintf(format string, args ...interface{}) {
	if *DebugAll || *DebugInfer {
		_, err := fmt.Fprintf(DebugWriter, format, args...)
		if err != nil {
			panic(err)
		}
	}
}

func PredPrintf(format string, args ...interface{}) {
	if *DebugAll || *DebugPred {
		_, err := fmt.Fprintf(DebugWriter, format, args...)
		if err != nil {
			panic(err)
		}
	}
}

func ExprPrintf(format string, args ...interface{}) {
	if *DebugAll || *DebugExpr {
		_, err := fmt.Fprintf(DebugWriter, format, args...)
		if err != nil {
			panic(err)
		}
	}
}
