// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package shutdowncheck

import (
	"testing"

	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/stretchr/testify/assert"
)

func TestShutdownTracker(t *testing.T) {
	db := rawdb.NewMemoryDatabase()

	clean := NewShutdownTracker(db)
	assert.Equal(t, 0, clean.MarkStartup())
	clean.Start()
	clean.Stop()
	clean.Stop()

	// A run that never stops leaves its marker behind.
	crashed := NewShutdownTracker(db)
	assert.Equal(t, 0, crashed.MarkStartup())

	next := NewShutdownTracker(db)
	assert.Equal(t, 1, next.MarkStartup())
	next.Stop()

	assert.Equal(t, 1, NewShutdownTracker(db).MarkStartup())
}
