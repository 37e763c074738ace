// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package table

import "fmt"

// RowArityError is returned when a row's value count does not match its
// table's processed field count.
type RowArityError struct {
	Table    string
	Want, Got int
}

func (e *RowArityError) Error() string {
	return fmt.Sprintf("table: %q expects %d cells per row, got %d", e.Table, e.Want, e.Got)
}
