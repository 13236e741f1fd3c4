package io

import (
	"math/rand"

	"glime/pkg/model"
)

// DataSet provides ordered and shuffled views over a corpus without copying
// the records. The explainer uses random splits to pick the sample of
// instances whose explanations are aggregated.
type DataSet struct {
	Data         []*model.Record
	Rand         *rand.Rand
	dataIndices  []int
	currentOrder []int
}

type DatasetOrder int

const (
	OriginalOrder DatasetOrder = iota
	RandomOrder
)

func NewDataSet(data []*model.Record, rnd *rand.Rand) *DataSet {
	dataIndices := make([]int, len(data))
	for i := range dataIndices {
		dataIndices[i] = i
	}
	ds := &DataSet{Data: data, Rand: rnd, dataIndices: dataIndices}
	ds.ResetOrder(OriginalOrder)
	return ds
}

func newDataSetSplit(data []*model.Record, rnd *rand.Rand, indices []int) *DataSet {
	ds := &DataSet{Data: data, Rand: rnd, dataIndices: indices}
	ds.ResetOrder(OriginalOrder)
	return ds
}

func (d *DataSet) ResetOrder(order DatasetOrder) {
	if d.currentOrder == nil {
		d.currentOrder = make([]int, len(d.dataIndices))
	}
	switch order {
	case OriginalOrder:
		copy(d.currentOrder, d.dataIndices)
	case RandomOrder:
		ind := d.Rand.Perm(len(d.currentOrder))
		for i := range ind {
			d.currentOrder[i] = d.dataIndices[ind[i]]
		}
	}
}

func (d *DataSet) Size() int {
	return len(d.dataIndices)
}

// Records returns the records in the current order.
func (d *DataSet) Records() []*model.Record {
	records := make([]*model.Record, len(d.currentOrder))
	for i, index := range d.currentOrder {
		records[i] = d.Data[index]
	}
	return records
}

// RandomSplit shuffles the set and carves out one split per requested size.
// Sizes exceeding the remaining records are truncated.
func (d *DataSet) RandomSplit(sizes ...int) []*DataSet {
	indices := make([]int, len(d.dataIndices))
	copy(indices, d.dataIndices)
	d.Rand.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	splits := make([]*DataSet, len(sizes))
	idx := 0
	for i, size := range sizes {
		if size > len(indices)-idx {
			size = len(indices) - idx
		}
		splitIndices := make([]int, size)
		copy(splitIndices, indices[idx:idx+size])
		idx += size
		splits[i] = newDataSetSplit(d.Data, d.Rand, splitIndices)
	}
	return splits
}
