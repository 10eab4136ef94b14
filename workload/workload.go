// Package workload parses job streams in the Standard Workload Format
// (SWF): http://www.cs.huji.ac.il/labs/parallel/workload/, whitespace
// separated, 18 integer columns per line. Every compared column is
// parsed to an integer before any sentinel comparison happens.
package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const numColumns = 18

// SkipReason identifies why a line was not turned into a Job.
type SkipReason int

const (
	SkipComment SkipReason = iota
	SkipBlank
	SkipBadStatus
	SkipNoArrivalOrDependency
	SkipBadJobNumber
	SkipBadUserID
	SkipBadGroupID
	SkipBadSubmitTime
	SkipBadRunTime
	SkipBadEstimatedTime
	SkipBadProcessorCount
	SkipMalformed
)

func (r SkipReason) String() string {
	switch r {
	case SkipComment:
		return "comment"
	case SkipBlank:
		return "blank"
	case SkipBadStatus:
		return "bad_status"
	case SkipNoArrivalOrDependency:
		return "no_arrival_or_dependency"
	case SkipBadJobNumber:
		return "bad_job_number"
	case SkipBadUserID:
		return "bad_user_id"
	case SkipBadGroupID:
		return "bad_group_id"
	case SkipBadSubmitTime:
		return "bad_submit_time"
	case SkipBadRunTime:
		return "bad_run_time"
	case SkipBadEstimatedTime:
		return "bad_estimated_time"
	case SkipBadProcessorCount:
		return "bad_processor_count"
	case SkipMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Skip records one line that was not parsed into a Job, and why.
type Skip struct {
	Line   int
	Reason SkipReason
	Text   string
}

// Record is the parsed, pre-Job form of one SWF line: only the fields
// the simulator's core cares about.
type Record struct {
	JobNumber             int64
	SubmitTime            int64
	RunTime               int64
	NumRequiredProcessors int
	EstimatedRunTime      int64
	UserID                int64
}

// Parse reads SWF-formatted lines from r, returning one Record per
// accepted line (in file order) and one Skip per rejected line.
// Malformed lines (wrong column count, non-integer fields) are reported
// as SkipMalformed rather than returned as an error: bad input lines
// are logged-not-fatal. IO errors from r are returned directly.
func Parse(r io.Reader) ([]Record, []Skip, error) {
	var records []Record
	var skips []Skip

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ";") {
			skips = append(skips, Skip{Line: lineNo, Reason: SkipComment, Text: line})
			continue
		}
		if trimmed == "" {
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBlank, Text: line})
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != numColumns {
			skips = append(skips, Skip{Line: lineNo, Reason: SkipMalformed, Text: line})
			continue
		}

		ints := make([]int64, numColumns)
		malformed := false
		for i, f := range fields {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				malformed = true
				break
			}
			ints[i] = v
		}
		if malformed {
			skips = append(skips, Skip{Line: lineNo, Reason: SkipMalformed, Text: line})
			continue
		}

		jobNumber := ints[0]
		submitTime := ints[1]
		runTime := ints[3]
		allocatedProcessors := ints[4]
		status := ints[10]
		userID := ints[11]
		groupID := ints[12]
		requestedProcessors := ints[7]
		precedingJobNumber := ints[16]
		requestedTime := ints[8]

		switch {
		case status == 2 || status == 3 || status == 4:
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBadStatus, Text: line})
			continue
		case submitTime == -1 && precedingJobNumber == -1:
			skips = append(skips, Skip{Line: lineNo, Reason: SkipNoArrivalOrDependency, Text: line})
			continue
		case jobNumber < 1:
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBadJobNumber, Text: line})
			continue
		case userID < 0:
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBadUserID, Text: line})
			continue
		case groupID < 0:
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBadGroupID, Text: line})
			continue
		case submitTime <= 0:
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBadSubmitTime, Text: line})
			continue
		case runTime <= 0:
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBadRunTime, Text: line})
			continue
		case requestedTime <= 0:
			// column 8 is -1 ("not available") in many real traces;
			// without a positive user estimate a job cannot be reserved.
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBadEstimatedTime, Text: line})
			continue
		}

		numRequired := requestedProcessors
		if allocatedProcessors > numRequired {
			numRequired = allocatedProcessors
		}
		if numRequired <= 0 {
			skips = append(skips, Skip{Line: lineNo, Reason: SkipBadProcessorCount, Text: line})
			continue
		}

		records = append(records, Record{
			JobNumber:             jobNumber,
			SubmitTime:            submitTime,
			RunTime:               runTime,
			NumRequiredProcessors: int(numRequired),
			EstimatedRunTime:      requestedTime,
			UserID:                userID,
		})
	}
	if err := scanner.Err(); err != nil {
		return records, skips, fmt.Errorf("workload: parse: %w", err)
	}
	return records, skips, nil
}
