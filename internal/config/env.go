package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func envString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(dst *int, name string) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envList(dst *[]string, name string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func parseDuration(field, value string) error {
	if _, err := time.ParseDuration(value); err != nil {
		return fieldError(field, err)
	}
	return nil
}

func duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}
