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

package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventOp describes what happened to a spec file.
type EventOp string

const (
	// EventSaved means the spec was created or replaced.
	EventSaved EventOp = "saved"
	// EventDeleted means the spec file is gone.
	EventDeleted EventOp = "deleted"
)

// Event reports a settled change to one spec.
type Event struct {
	ID string
	Op EventOp
}

// Watch reports changes to spec files until ctx is done. Bursts of events
// for the same spec are debounced into one Event carrying the file's state
// once it settles. The returned channel is closed when watching stops.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(s.dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	events := make(chan Event)
	go s.processEvents(ctx, fsWatcher, events)

	s.logger.Debug("watching spec directory", "path", s.dir)
	return events, nil
}

func (s *Store) processEvents(ctx context.Context, fsWatcher *fsnotify.Watcher, events chan<- Event) {
	settled := make(chan string)
	pending := make(map[string]*time.Timer)

	defer func() {
		for _, timer := range pending {
			timer.Stop()
		}
		fsWatcher.Close()
		close(events)
	}()

	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			id, ok := s.idFor(filepath.Base(event.Name))
			if !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			// Restart the debounce window for this spec
			if timer, exists := pending[id]; exists {
				timer.Stop()
			}
			pending[id] = time.AfterFunc(s.debounce, func() {
				select {
				case settled <- id:
				case <-ctx.Done():
				}
			})

		case id := <-settled:
			delete(pending, id)
			ev := Event{ID: id, Op: EventSaved}
			if _, err := os.Stat(filepath.Join(s.dir, id+fileExt)); errors.Is(err, fs.ErrNotExist) {
				ev.Op = EventDeleted
			}
			s.logger.Info("spec changed on disk", "spec_id", id, "op", string(ev.Op))

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("file watcher error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}
