// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tracing

import (
	"io"
)

// Exporter names.
const (
	// ExporterStdout writes spans as JSON to Config.Writer.
	ExporterStdout = "stdout"

	// ExporterNone records spans without exporting them.
	ExporterNone = "none"
)

// Config holds tracing configuration.
type Config struct {
	// ServiceName identifies this program in span resources.
	ServiceName string

	// ServiceVersion is the application version.
	ServiceVersion string

	// Exporter is "stdout" or "none". Default: stdout
	Exporter string

	// Writer receives exported spans. Default: os.Stderr
	Writer io.Writer

	// PrettyPrint indents exported JSON.
	PrettyPrint bool

	// SampleRate is the fraction of runs to trace (0.0 - 1.0).
	// Zero is treated as 1.0.
	SampleRate float64
}

// DefaultConfig returns a Config that traces every run to stderr.
func DefaultConfig() Config {
	return Config{
		ServiceName: "cmdspec",
		Exporter:    ExporterStdout,
		SampleRate:  1.0,
	}
}
