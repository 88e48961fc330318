/*
   OqtaFlux - magnetic disk flux decoder
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of OqtaFlux.

   OqtaFlux is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   OqtaFlux is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with OqtaFlux. If not, see <http://www.gnu.org/licenses/>.
*/

package record

/*
	Block gives access to the fields of a raw record by name. The index maps
	each field name to its offset and length within the record bytes. Fields
	that lie outside of the data read as empty or zero, since records recovered
	from flux may be truncated.
*/
func NewBlock(index map[string][2]int, data []byte) *Block {
	return &Block{index: index, Data: data}
}

//
type Block struct {
	index map[string][2]int
	Data  []byte
}

//
func (b *Block) Has(key string) bool {
	if ix, ok := b.index[key]; ok {
		return 0 <= ix[0] && ix[0]+ix[1] <= len(b.Data)
	}
	return false
}

//
func (b *Block) GetByte(key string) byte {
	if ix, ok := b.index[key]; ok {
		if 0 <= ix[0] && ix[0] < len(b.Data) && ix[1] == 1 {
			return b.Data[ix[0]]
		}
	}
	return 0
}

//
func (b *Block) GetSlice(key string) []byte {
	if ix, ok := b.index[key]; ok {
		start := ix[0]
		end := start + ix[1]
		if 0 <= start && end <= len(b.Data) {
			return b.Data[start:end]
		}
	}
	return []byte{}
}

// GetUpTo returns all data preceding field key, typically what a checksum
// stored in key covers.
func (b *Block) GetUpTo(key string) []byte {
	if ix, ok := b.index[key]; ok {
		if 0 <= ix[0] && ix[0] <= len(b.Data) {
			return b.Data[:ix[0]]
		}
	}
	return []byte{}
}

// GetIntBE reads a two byte big endian field. It returns -1 if the field is
// missing.
func (b *Block) GetIntBE(key string) int {
	bytes := b.GetSlice(key)
	if len(bytes) != 2 {
		return -1
	}
	return (int(bytes[0]) << 8) | int(bytes[1])
}
