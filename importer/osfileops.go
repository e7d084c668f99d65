// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package importer

import (
	"errors"
	"os"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
