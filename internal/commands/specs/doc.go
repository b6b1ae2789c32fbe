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
// Package specs implements the commands that manage stored specs: list,
// show, save, delete and new.
package specs

import (
	"github.com/tombee/cmdspec/internal/cli/prompt"
	"github.com/tombee/cmdspec/pkg/spec"
)

// Summary is the JSON shape of a spec in listings.
type Summary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Mode        spec.Mode `json:"mode"`
	Steps       int       `json:"steps"`
	Tags        []string  `json:"tags"`
	Modified    string    `json:"modified"`
}

func summarize(cs *spec.CommandSpec) Summary {
	tags := cs.Metadata.Tags
	if tags == nil {
		tags = []string{}
	}
	return Summary{
		ID:          cs.ID,
		Title:       cs.Title,
		Description: cs.Description,
		Mode:        cs.Mode,
		Steps:       len(cs.Steps),
		Tags:        tags,
		Modified:    cs.Metadata.Modified,
	}
}

// newPrompter builds the prompter used for confirmations.
var newPrompter = func(interactive bool) prompt.Prompter {
	return prompt.NewHuhPrompter(interactive)
}
