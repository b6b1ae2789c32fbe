// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
/*
Package tracing sets up OpenTelemetry tracing for cmdspec runs.

The interpreter creates one span per run ("cmdspec.run") with a child span
per step ("cmdspec.step") or action ("cmdspec.action"). By default the
global no-op provider is used and spans cost nothing. The CLI's --trace flag
builds a Provider that prints finished spans as JSON:

	provider, err := tracing.NewProvider(tracing.Config{
	    ServiceName:    "cmdspec",
	    ServiceVersion: version,
	    Exporter:       tracing.ExporterStdout,
	    Writer:         os.Stderr,
	})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(context.Background())

	interp, err := interpreter.New(interpreter.WithTracerProvider(provider.TracerProvider()))

# Sampling

SampleRate between 0 and 1 samples root spans by trace ID. Child spans
follow their parent's decision, so a run is either traced completely or not
at all.
*/
package tracing
