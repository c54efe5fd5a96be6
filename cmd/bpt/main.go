// Command bpt converts and inspects stored Binary Partition Trees.
//
//	bpt encode  --partition p.raw --mergings m.raw --prl out.prl --index out.txt
//	bpt decode  --index out.txt --partition p.raw --mergings m.raw
//	bpt info    out.prl
//	bpt replay  --partition p.raw --mergings m.raw
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
