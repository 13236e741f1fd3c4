package io

import (
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"glime/pkg/model"
)

type void struct{}

var Void = void{}

type Set map[string]void

func NewSet(values ...string) Set {
	set := Set{}
	for _, val := range values {
		set[val] = Void
	}
	return set
}

type DataParameters struct {
	DataFile           string
	TargetColumn       string
	CategoricalColumns Set
}

type DataError struct {
	Line  int
	Error string
}

// LoadData reads a CSV corpus into records. When metaData is nil a new
// metadata is built from the header and the observed values; otherwise the
// existing metadata is reused and rows with unseen categorical values or
// target classes are reported as DataErrors and skipped.
func LoadData(p DataParameters, metaData *model.Metadata) (*model.Metadata, []*model.Record, []DataError, error) {

	var errors []DataError
	inputFile, err := os.Open(p.DataFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error opening file: %w", err)
	}
	defer inputFile.Close()

	reader := csv.NewReader(inputFile)
	reader.Comma = ','

	//First line is expected to be a header
	record, err := reader.Read()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error reading data header: %w", err)
	}

	newMetadata := false
	if metaData == nil {
		metaData = model.NewMetadata()
		newMetadata = true
		metaData.Columns = record
		if err := setTargetColumn(p, metaData); err != nil {
			return nil, nil, nil, err
		}
		buildFeatureIndex(p, metaData)
	}

	var result []*model.Record
	currentLine := 0

	for record, err = reader.Read(); err == nil; record, err = reader.Read() {
		targetValue, err := parseTarget(newMetadata, metaData, record[metaData.TargetColumn])
		if err != nil {
			errors = append(errors, DataError{Line: currentLine, Error: err.Error()})
			currentLine++
			continue
		}

		continuous, err := parseContinuousFeatures(metaData, record)
		if err != nil {
			errors = append(errors, DataError{Line: currentLine, Error: err.Error()})
			currentLine++
			continue
		}

		categorical, err := parseCategoricalFeatures(metaData, newMetadata, record)
		if err != nil {
			errors = append(errors, DataError{Line: currentLine, Error: err.Error()})
			currentLine++
			continue
		}

		result = append(result, &model.Record{
			ID:          currentLine,
			Continuous:  continuous,
			Categorical: categorical,
			Target:      targetValue,
		})
		currentLine++
	}
	if err != io.EOF {
		return nil, nil, nil, fmt.Errorf("error reading data at line %d: %w", currentLine, err)
	}

	return metaData, result, errors, nil
}

func parseCategoricalFeatures(metaData *model.Metadata, newMetadata bool, record []string) ([]int, error) {
	size := metaData.CategoricalFeaturesMap.Size()
	categorical := make([]int, size)
	for index := 0; index < size; index++ {
		column := metaData.CategoricalFeaturesMap.IndexToColumn[index]
		valuesMap, ok := metaData.CategoricalValuesMap[index]
		if !ok {
			if !newMetadata {
				return nil, fmt.Errorf("unknown categorical attribute %s (should not happen!)", metaData.Columns[column])
			}
			valuesMap = model.NewNameMap()
			metaData.CategoricalValuesMap[index] = valuesMap
		}

		value := 0
		if newMetadata {
			value = valuesMap.ValueFor(record[column])
		} else {
			value, ok = valuesMap.NameToIndex[record[column]]
			if !ok {
				return nil, fmt.Errorf("unknown value %s for categorical attribute %s", record[column], metaData.Columns[column])
			}
		}
		categorical[index] = value
	}
	return categorical, nil
}

func parseContinuousFeatures(metaData *model.Metadata, record []string) ([]float64, error) {
	size := metaData.ContinuousFeaturesMap.Size()
	continuous := make([]float64, size)
	for index := 0; index < size; index++ {
		column := metaData.ContinuousFeaturesMap.IndexToColumn[index]
		value, err := strconv.ParseFloat(record[column], 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing feature %s: %w", metaData.Columns[column], err)
		}
		continuous[index] = value
	}
	return continuous, nil
}

func parseTarget(newMetadata bool, metaData *model.Metadata, target string) (float64, error) {
	if newMetadata {
		return metaData.ParseOrAddCategoricalTarget(target), nil
	}
	targetValue, ok := metaData.ParseCategoricalTarget(target)
	if !ok {
		return 0, fmt.Errorf("unknown target class %s", target)
	}
	return targetValue, nil
}

func buildFeatureIndex(p DataParameters, metaData *model.Metadata) {
	continuousIndex, categoricalIndex := 0, 0
	for i, col := range metaData.Columns {
		if i == metaData.TargetColumn {
			continue
		}
		if _, isCategorical := p.CategoricalColumns[col]; isCategorical {
			metaData.CategoricalFeaturesMap.Set(i, categoricalIndex)
			categoricalIndex++
		} else {
			metaData.ContinuousFeaturesMap.Set(i, continuousIndex)
			continuousIndex++
		}
	}
}

func setTargetColumn(p DataParameters, metaData *model.Metadata) error {
	for i, col := range metaData.Columns {
		if col == p.TargetColumn {
			metaData.TargetColumn = i
			return nil
		}
	}
	return fmt.Errorf("target column %s not found in data header", p.TargetColumn)
}

func SaveModel(m *model.Model, writer io.Writer) error {
	encoder := gob.NewEncoder(writer)
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("error encoding model: %w", err)
	}
	return nil
}

func LoadModel(input io.Reader) (*model.Model, error) {
	decoder := gob.NewDecoder(input)
	m := model.Model{}
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("error decoding model: %w", err)
	}
	return &m, nil
}

// LoadImportance reads an externally supplied global feature importance map
// (feature name to non-negative score) from a JSON file. Models without
// native importances may supply an empty map.
func LoadImportance(fileName string) (map[string]float64, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("error reading importance file: %w", err)
	}
	importance := map[string]float64{}
	if err := json.Unmarshal(data, &importance); err != nil {
		return nil, fmt.Errorf("error parsing importance file %s: %w", fileName, err)
	}
	return importance, nil
}
