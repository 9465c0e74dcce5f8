//go:build windows

package main

import (
	"fmt"
	"os"
)

// writeOutputFile writes path in place; renameio has no Windows support.
func writeOutputFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
