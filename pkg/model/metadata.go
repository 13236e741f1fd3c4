package model

// NameMap implements a bidirectional mapping between a name and an index
type NameMap struct {
	NameToIndex map[string]int
	IndexToName map[int]string
}

func (f NameMap) Set(name string, index int) {
	f.NameToIndex[name] = index
	f.IndexToName[index] = name
}

func (f NameMap) Size() int {
	return len(f.IndexToName)
}

func (f NameMap) ContainsName(name string) (int, bool) {
	index, ok := f.NameToIndex[name]
	return index, ok
}

// ValueFor returns the index for name, assigning the next free index if the
// name has not been seen before.
func (f NameMap) ValueFor(name string) int {
	index, ok := f.NameToIndex[name]
	if !ok {
		index = f.Size()
		f.Set(name, index)
	}
	return index
}

func NewNameMap() NameMap {
	return NameMap{
		NameToIndex: map[string]int{},
		IndexToName: map[int]string{},
	}
}

// ColumnMap is a bidirectional mapping between a data column index and a
// dense feature index
type ColumnMap struct {
	ColumnToIndex map[int]int
	IndexToColumn map[int]int
}

func (f ColumnMap) Set(column int, index int) {
	f.ColumnToIndex[column] = index
	f.IndexToColumn[index] = column
}

func (f ColumnMap) Size() int {
	return len(f.ColumnToIndex)
}

func (f ColumnMap) GetColumn(column int) (int, bool) {
	index, ok := f.ColumnToIndex[column]
	return index, ok
}

func NewColumnMap() ColumnMap {
	return ColumnMap{
		ColumnToIndex: map[int]int{},
		IndexToColumn: map[int]int{},
	}
}

type Metadata struct {
	Columns []string

	// ContinuousFeaturesMap maps a data row column index to a continuous feature index
	ContinuousFeaturesMap ColumnMap

	// CategoricalFeaturesMap maps a data row column index to a categorical feature index
	CategoricalFeaturesMap ColumnMap

	// CategoricalValuesMap maps a categorical feature index to the mapping
	// between its observed level names and level indexes
	CategoricalValuesMap map[int]NameMap

	// TargetColumn points to the column in the data row that contains the prediction target
	TargetColumn int

	// TargetMap contains a mapping of target class names to class indexes
	TargetMap NameMap
}

func NewMetadata() *Metadata {
	return &Metadata{
		Columns:                nil,
		ContinuousFeaturesMap:  NewColumnMap(),
		CategoricalFeaturesMap: NewColumnMap(),
		CategoricalValuesMap:   map[int]NameMap{},
		TargetColumn:           -1,
		TargetMap:              NewNameMap(),
	}
}

func (d *Metadata) FeatureCount() int {
	return d.ContinuousFeaturesMap.Size() + d.CategoricalFeaturesMap.Size()
}

func (d *Metadata) NumContinuous() int {
	return d.ContinuousFeaturesMap.Size()
}

func (d *Metadata) NumCategorical() int {
	return d.CategoricalFeaturesMap.Size()
}

// FeatureName resolves a unified feature index (continuous features first,
// categorical features after) to its column name.
func (d *Metadata) FeatureName(index int) string {
	nc := d.NumContinuous()
	if index < nc {
		return d.Columns[d.ContinuousFeaturesMap.IndexToColumn[index]]
	}
	return d.Columns[d.CategoricalFeaturesMap.IndexToColumn[index-nc]]
}

// LevelName resolves a categorical feature's level index to the level name
// observed at load time.
func (d *Metadata) LevelName(catIndex, level int) string {
	values, ok := d.CategoricalValuesMap[catIndex]
	if !ok {
		return ""
	}
	return values.IndexToName[level]
}

func (d *Metadata) ParseOrAddCategoricalTarget(value string) float64 {
	return float64(d.TargetMap.ValueFor(value))
}

func (d *Metadata) ParseCategoricalTarget(value string) (float64, bool) {
	target, ok := d.TargetMap.ContainsName(value)
	if !ok {
		return 0, false
	}
	return float64(target), true
}
