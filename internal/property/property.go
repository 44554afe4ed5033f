// Copyright 2026 The TidyForge Authors
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

package property

import "time"

// Property represents a location serviced by a cleaning company.
// AccessCode and AccessInstructions are sensitive and must never
// appear in log output.
type Property struct {
	ID                 string    `json:"id"`
	CompanyID          string    `json:"company_id"`
	ClientID           string    `json:"client_id"`
	Address            string    `json:"address"`
	City               string    `json:"city,omitempty"`
	State              string    `json:"state,omitempty"`
	ZipCode            string    `json:"zip_code,omitempty"`
	PropertyType       string    `json:"property_type,omitempty"`
	SquareFootage      int       `json:"square_footage,omitempty"`
	Bedrooms           int       `json:"bedrooms,omitempty"`
	Bathrooms          int       `json:"bathrooms,omitempty"`
	AccessCode         string    `json:"access_code,omitempty"`
	AccessInstructions string    `json:"access_instructions,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
