// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// StorageEncoder encodes storage value.
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder decodes storage value.
type StorageDecoder interface {
	Decode([]byte) error
}
