package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Package     string
	Operation   string
	Impl        string // "memkit", "builtin" or an allocator variant
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs a memkit benchmark with its builtin counterpart.
type ComparisonResult struct {
	Operation     string
	MemkitNs      float64
	BuiltinNs     float64
	Speedup       float64
	MemkitMem     int64
	BuiltinMem    int64
	MemkitAllocs  int64
	BuiltinAllocs int64
	MemkitOnly    bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// Reads `go test -bench . -benchmem ./...` output (plain or -json) and writes
// a markdown report comparing memkit containers and allocators against the
// builtin Go equivalents. Benchmarks are expected as Benchmark<Op>/<impl>.
func main() {
	flag.Parse()

	in := os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results)
	report := generateMarkdownReport(comparisons)

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

// BenchmarkGet/memkit-8    50000000    24.1 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

var pkgRegex = regexp.MustCompile(`^pkg:\s+(\S+)`)

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult
	pkg := ""

	for scanner.Scan() {
		line := scanner.Text()

		// -json output wraps each line in a test event
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
			if p, ok := testEvent["Package"].(string); ok {
				pkg = p
			}
		}
		line = strings.TrimSpace(line)

		if m := pkgRegex.FindStringSubmatch(line); m != nil {
			pkg = m[1]
			continue
		}
		matches := benchmarkRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		r := BenchmarkResult{Name: matches[1], Package: shortPackage(pkg)}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		r.Operation, r.Impl = splitName(r.Name)
		if r.Package != "" {
			r.Operation = r.Package + "." + r.Operation
		}
		results = append(results, r)
	}
	return results
}

// splitName turns Benchmark<Op>/<impl>-<procs> into (Op, impl). Benchmarks
// without a sub-benchmark are memkit-only.
func splitName(name string) (string, string) {
	name = strings.TrimPrefix(name, "Benchmark")
	if i := strings.LastIndex(name, "-"); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	op, impl, ok := strings.Cut(name, "/")
	if !ok {
		return op, "memkit"
	}
	return op, impl
}

func shortPackage(pkg string) string {
	pkg = strings.TrimPrefix(pkg, "github.com/joshuapare/memkit/")
	return strings.ReplaceAll(pkg, "/", ".")
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	grouped := make(map[string]map[string]BenchmarkResult)
	for _, r := range results {
		if grouped[r.Operation] == nil {
			grouped[r.Operation] = make(map[string]BenchmarkResult)
		}
		grouped[r.Operation][r.Impl] = r
	}

	var comparisons []ComparisonResult
	for op, impls := range grouped {
		builtin, hasBuiltin := impls["builtin"]
		for impl, r := range impls {
			if impl == "builtin" {
				continue
			}
			name := op
			if impl != "memkit" {
				name = op + "/" + impl
			}
			c := ComparisonResult{
				Operation:    name,
				MemkitNs:     r.NsPerOp,
				MemkitMem:    r.BytesPerOp,
				MemkitAllocs: r.AllocsPerOp,
				MemkitOnly:   !hasBuiltin,
			}
			if hasBuiltin {
				c.BuiltinNs = builtin.NsPerOp
				c.BuiltinMem = builtin.BytesPerOp
				c.BuiltinAllocs = builtin.AllocsPerOp
				c.Speedup = builtin.NsPerOp / r.NsPerOp
			}
			comparisons = append(comparisons, c)
		}
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].Operation < comparisons[j].Operation
	})
	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult) string {
	var sb strings.Builder

	sb.WriteString("# memkit Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	faster, slower, only := 0, 0, 0
	for _, c := range comparisons {
		switch {
		case c.MemkitOnly:
			only++
		case c.Speedup >= 1.0:
			faster++
		default:
			slower++
		}
	}
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Benchmarks**: %d\n", len(comparisons)))
	sb.WriteString(fmt.Sprintf("- **Faster than builtin**: %d\n", faster))
	sb.WriteString(fmt.Sprintf("- **Slower than builtin**: %d\n", slower))
	sb.WriteString(fmt.Sprintf("- **No builtin counterpart**: %d\n\n", only))

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Operation | memkit (ns/op) | builtin (ns/op) | Speedup | Memory (B/op) | Allocs |\n")
	sb.WriteString("|-----------|----------------|-----------------|---------|---------------|--------|\n")
	for _, c := range comparisons {
		if c.MemkitOnly {
			sb.WriteString(fmt.Sprintf("| %s | %s | *N/A* | *N/A* | %s | %s |\n",
				c.Operation,
				formatNumber(c.MemkitNs),
				formatBytes(c.MemkitMem),
				formatNumber(float64(c.MemkitAllocs)),
			))
			continue
		}
		indicator := "✓"
		if c.Speedup < 1.0 {
			indicator = "✗"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2fx %s | %s vs %s | %s vs %s |\n",
			c.Operation,
			formatNumber(c.MemkitNs),
			formatNumber(c.BuiltinNs),
			c.Speedup,
			indicator,
			formatBytes(c.MemkitMem),
			formatBytes(c.BuiltinMem),
			formatNumber(float64(c.MemkitAllocs)),
			formatNumber(float64(c.BuiltinAllocs)),
		))
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- **Speedup > 1.0**: memkit is faster ✓\n")
	sb.WriteString("- **Memory / Allocs**: Go heap bytes and allocations per op; allocator-backed storage does not show up here\n")
	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.2f", n)
}

func formatBytes(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	} else if b >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
