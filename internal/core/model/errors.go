// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import "errors"

// ErrNoCandidates is returned by the backfill workflow when the video
// provider found nothing for a query. It fails the workflow — there is
// nothing to analyze — but the search layer translates it into an empty
// result, since "truly no videos found" is a legitimate outcome for the user,
// not an infrastructure failure.
var ErrNoCandidates = errors.New("no review videos found for query")
