package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	titleColumnNameConstant            = "title"
	bodyColumnNameConstant             = "body"
	labelsColumnNameConstant           = "labels"
	assigneesColumnNameConstant        = "assignees"
	milestoneColumnNameConstant        = "milestone"
	projectOwnerColumnNameConstant     = "project_owner"
	projectNumberColumnNameConstant    = "project_number"
	stateColumnNameConstant            = "state"
	closeReasonColumnNameConstant      = "close_reason"
	cellListSeparatorConstant          = ";"
	byteOrderMarkConstant              = "\uFEFF"
	csvReadErrorTemplateConstant       = "unable to read CSV: %w"
	missingTitleMessageConstant        = "missing title"
	invalidStateMessageTemplateConst   = "invalid state %q"
	missingHeaderRowMessageConstant    = "CSV file has no header row"
	missingTitleColumnMessageConstant  = "CSV header has no title column"
	rowValidationErrorTemplateConstant = "row %d: %s"
)

// RowValidationError reports a CSV data row that cannot become an issue request.
type RowValidationError struct {
	RowNumber int
	Message   string
}

// Error describes the invalid row.
func (validationError RowValidationError) Error() string {
	return fmt.Sprintf(rowValidationErrorTemplateConstant, validationError.RowNumber, validationError.Message)
}

// RowRecord pairs a CSV data row with its parsed request or validation failure.
type RowRecord struct {
	RowNumber       int
	Request         IssueRequest
	ValidationError *RowValidationError
}

// RowParser decodes CSV content into issue requests.
type RowParser struct{}

// NewRowParser constructs a RowParser instance.
func NewRowParser() RowParser {
	return RowParser{}
}

// ParseRows reads the full CSV stream and returns one record per data row.
// Column names are matched case-insensitively and unknown columns are ignored;
// rows failing validation are returned with a populated ValidationError.
func (parser RowParser) ParseRows(csvReader io.Reader) ([]RowRecord, error) {
	reader := csv.NewReader(csvReader)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headerCells, headerError := reader.Read()
	if headerError == io.EOF {
		return nil, fmt.Errorf(csvReadErrorTemplateConstant, errors.New(missingHeaderRowMessageConstant))
	}
	if headerError != nil {
		return nil, fmt.Errorf(csvReadErrorTemplateConstant, headerError)
	}

	columnIndexes, headerValidationError := buildColumnIndexes(headerCells)
	if headerValidationError != nil {
		return nil, headerValidationError
	}

	records := []RowRecord{}
	dataRowNumber := 0
	for {
		rowCells, rowError := reader.Read()
		if rowError == io.EOF {
			break
		}
		if rowError != nil {
			return nil, fmt.Errorf(csvReadErrorTemplateConstant, rowError)
		}

		dataRowNumber++
		records = append(records, parser.parseRow(dataRowNumber, rowCells, columnIndexes))
	}

	return records, nil
}

func (parser RowParser) parseRow(rowNumber int, rowCells []string, columnIndexes map[string]int) RowRecord {
	cellValue := func(columnName string) string {
		columnIndex, columnKnown := columnIndexes[columnName]
		if !columnKnown || columnIndex >= len(rowCells) {
			return ""
		}
		return strings.TrimSpace(rowCells[columnIndex])
	}

	record := RowRecord{RowNumber: rowNumber}

	title := cellValue(titleColumnNameConstant)
	if len(title) == 0 {
		record.ValidationError = &RowValidationError{RowNumber: rowNumber, Message: missingTitleMessageConstant}
		return record
	}

	issueState, stateError := parseIssueState(cellValue(stateColumnNameConstant))
	if stateError != nil {
		record.ValidationError = &RowValidationError{RowNumber: rowNumber, Message: stateError.Error()}
		return record
	}

	record.Request = IssueRequest{
		Title:          title,
		Body:           cellValue(bodyColumnNameConstant),
		Labels:         SplitDelimitedCell(cellValue(labelsColumnNameConstant)),
		Assignees:      SplitDelimitedCell(cellValue(assigneesColumnNameConstant)),
		MilestoneTitle: cellValue(milestoneColumnNameConstant),
		ProjectOwner:   cellValue(projectOwnerColumnNameConstant),
		ProjectNumber:  parseProjectNumber(cellValue(projectNumberColumnNameConstant)),
		State:          issueState,
		CloseReason:    cellValue(closeReasonColumnNameConstant),
	}

	return record
}

func buildColumnIndexes(headerCells []string) (map[string]int, error) {
	columnIndexes := map[string]int{}
	for cellIndex, headerCell := range headerCells {
		normalizedName := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(headerCell, byteOrderMarkConstant)))
		if len(normalizedName) == 0 {
			continue
		}
		if _, alreadySeen := columnIndexes[normalizedName]; alreadySeen {
			continue
		}
		columnIndexes[normalizedName] = cellIndex
	}

	if _, titlePresent := columnIndexes[titleColumnNameConstant]; !titlePresent {
		return nil, errors.New(missingTitleColumnMessageConstant)
	}

	return columnIndexes, nil
}

// SplitDelimitedCell splits a semicolon-delimited cell into trimmed tokens,
// discarding empty strings and duplicates while preserving first-seen order.
func SplitDelimitedCell(cellContent string) []string {
	if len(cellContent) == 0 {
		return nil
	}

	tokens := []string{}
	seenTokens := map[string]struct{}{}
	for _, rawToken := range strings.Split(cellContent, cellListSeparatorConstant) {
		trimmedToken := strings.TrimSpace(rawToken)
		if len(trimmedToken) == 0 {
			continue
		}
		if _, alreadySeen := seenTokens[trimmedToken]; alreadySeen {
			continue
		}
		seenTokens[trimmedToken] = struct{}{}
		tokens = append(tokens, trimmedToken)
	}

	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func parseIssueState(stateCell string) (IssueState, error) {
	normalizedState := strings.ToLower(strings.TrimSpace(stateCell))
	switch normalizedState {
	case "", string(IssueStateOpen):
		return IssueStateOpen, nil
	case string(IssueStateClosed):
		return IssueStateClosed, nil
	default:
		return IssueStateOpen, fmt.Errorf(invalidStateMessageTemplateConst, stateCell)
	}
}

// parseProjectNumber treats non-numeric or non-positive values as unset rather
// than failing the row; the project follow-up only fires on a complete target.
func parseProjectNumber(projectNumberCell string) int {
	if len(projectNumberCell) == 0 {
		return 0
	}
	parsedNumber, parseError := strconv.Atoi(projectNumberCell)
	if parseError != nil || parsedNumber <= 0 {
		return 0
	}
	return parsedNumber
}
