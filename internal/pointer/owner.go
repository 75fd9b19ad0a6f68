/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pointer

// Owner is the pointer capture token. At most one holder at a time.
type Owner struct {
	holder string
}

// Acquire takes the token for name. It fails when someone else holds it;
// re-acquiring by the current holder succeeds.
func (o *Owner) Acquire(name string) bool {
	if o.holder != "" && o.holder != name {
		return false
	}
	o.holder = name
	return true
}

// Release gives the token back if name holds it.
func (o *Owner) Release(name string) {
	if o.holder == name {
		o.holder = ""
	}
}

// Holder returns the current holder or "".
func (o *Owner) Holder() string { return o.holder }

// Held reports whether any state machine captures the pointer.
func (o *Owner) Held() bool { return o.holder != "" }
