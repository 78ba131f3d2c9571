// Package flagx holds helpers for parsing a subset of command-line flags
// without colliding with flags owned by other packages.
package flagx

import (
	"flag"
	"strconv"
	"strings"
	"time"
)

// FilterArgs keeps only the allowed flags and their values from args.
// Both "-f value" and "-f=value" forms are recognized; a token starting with
// "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigPath returns the value of -c or -config found in args, or "" when
// neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

// Minutes is a flag.Value that reads a whole number of minutes into a
// time.Duration.
type Minutes struct {
	D *time.Duration
}

func (m Minutes) String() string {
	if m.D == nil {
		return "0"
	}
	return strconv.Itoa(int(m.D.Minutes()))
}

func (m Minutes) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*m.D = time.Duration(n) * time.Minute
	return nil
}

// List is a flag.Value for comma-separated values. Empty items are dropped.
type List struct {
	S *[]string
}

func (l List) String() string {
	if l.S == nil {
		return ""
	}
	return strings.Join(*l.S, ",")
}

func (l List) Set(s string) error {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*l.S = out
	return nil
}
