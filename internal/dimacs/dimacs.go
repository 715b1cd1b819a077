// Package dimacs reads CNF instances in the DIMACS format and writes the
// model files produced by the solver.
package dimacs

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tobik/skua/sat"
)

// Instance is a parsed CNF formula.
type Instance struct {
	Variables int
	Clauses   [][]sat.Literal
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			file.Close()
			return nil, err
		}
	}
	return rc, nil
}

// ParseFile parses the DIMACS CNF file at the given path.
func ParseFile(filename string, gzipped bool) (*Instance, error) {
	rc, err := reader(filename, gzipped)
	if err != nil {
		return nil, fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer rc.Close()
	return Parse(rc)
}

// Parse parses a DIMACS CNF instance. Comment lines start with 'c', the
// header line is "p cnf <vars> <clauses>", clauses are 0-terminated runs of
// literals spread over arbitrary whitespace, and a line starting with '%'
// terminates the input (SATLIB convention). A last clause missing its
// terminating 0 is accepted.
func Parse(r io.Reader) (*Instance, error) {
	scanner := bufio.NewScanner(r)

	nVars, err := parseHeader(scanner)
	if err != nil {
		return nil, err
	}

	instance := &Instance{Variables: nVars}
	var clause []sat.Literal
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == 'c' {
			continue
		}
		if line[0] == '%' {
			break
		}

		for _, field := range strings.Fields(line) {
			l, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid literal token %q: %s", field, err)
			}
			if l == 0 {
				instance.Clauses = append(instance.Clauses, clause)
				clause = nil
				continue
			}
			if v := abs(l); v > nVars {
				return nil, fmt.Errorf("literal %d outside of variable range [1, %d]", l, nVars)
			}
			clause = append(clause, sat.Literal(l))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(clause) > 0 {
		instance.Clauses = append(instance.Clauses, clause)
	}

	return instance, nil
}

// parseHeader skips the leading comments and parses the "p cnf" problem
// line, returning the declared number of variables.
func parseHeader(scanner *bufio.Scanner) (int, error) {
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == 'c' {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 4 || parts[0] != "p" {
			return 0, fmt.Errorf("malformed problem line %q", line)
		}
		if parts[1] != "cnf" {
			return 0, fmt.Errorf("instances of type %q are not supported", parts[1])
		}
		nVars, err := strconv.Atoi(parts[2])
		if err != nil {
			return 0, fmt.Errorf("could not parse header: %w", err)
		}
		if _, err := strconv.Atoi(parts[3]); err != nil {
			return 0, fmt.Errorf("could not parse header: %w", err)
		}
		if nVars < 0 {
			return 0, fmt.Errorf("invalid number of variables %d", nVars)
		}
		return nVars, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("header line not found")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
