/*
Copyright (C) 2023, 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package search

import "fmt"

// BudgetExceeded is non-fatal (spec.md §7): a Session that stopped
// because of --timeout or --mem before every pixel was decided still
// returns its (incomplete) image; BudgetExceeded documents why.
type BudgetExceeded struct {
	SessionID       string
	UndecidedPixels int
	Elapsed         float64 // seconds
}

func (e *BudgetExceeded) Error() string {
	return fmt.Sprintf("session %s: budget exceeded after %.2fs with %d pixel(s) undecided",
		e.SessionID, e.Elapsed, e.UndecidedPixels)
}
