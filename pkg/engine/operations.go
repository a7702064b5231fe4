// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

// OperationType discriminates the Operation variants, the Go analogue of
// the serde-tagged Rust `Operation` enum in operations.rs.
type OperationType string

const (
	OpAddStructField          OperationType = "add_struct_field"
	OpUpdateStructField       OperationType = "update_struct_field"
	OpRemoveStructField       OperationType = "remove_struct_field"
	OpAddStructLiteralField   OperationType = "add_struct_literal_field"
	OpAddEnumVariant          OperationType = "add_enum_variant"
	OpUpdateEnumVariant       OperationType = "update_enum_variant"
	OpRemoveEnumVariant       OperationType = "remove_enum_variant"
	OpAddMatchArm             OperationType = "add_match_arm"
	OpUpdateMatchArm          OperationType = "update_match_arm"
	OpRemoveMatchArm          OperationType = "remove_match_arm"
	OpAddImplMethod           OperationType = "add_impl_method"
	OpAddUseStatement         OperationType = "add_use_statement"
	OpAddDerive               OperationType = "add_derive"
	OpRemoveDerive            OperationType = "remove_derive"
	OpTransform               OperationType = "transform"
	OpRenameEnumVariant       OperationType = "rename_enum_variant"
	OpRenameFunction          OperationType = "rename_function"
	OpAddDocComment           OperationType = "add_doc_comment"
	OpUpdateDocComment        OperationType = "update_doc_comment"
	OpRemoveDocComment        OperationType = "remove_doc_comment"
)

// Operation is a single operation descriptor: the tagged union of every
// operation kind, carrying the fields relevant to its Type. Every
// operation carries a file set (resolved externally, not stored here), a
// mode flag (Apply), and an optional Where filter (spec.md §3).
type Operation struct {
	Type OperationType `json:"type" yaml:"type"`

	// Shared across most operation kinds.
	Apply bool   `json:"apply,omitempty" yaml:"apply,omitempty"`
	Where string `json:"where,omitempty" yaml:"where,omitempty"`
	Limit int    `json:"limit,omitempty" yaml:"limit,omitempty"`

	// Struct field operations.
	StructName  string `json:"struct_name,omitempty" yaml:"struct_name,omitempty"`
	FieldDef    string `json:"field_def,omitempty" yaml:"field_def,omitempty"`
	FieldName   string `json:"field_name,omitempty" yaml:"field_name,omitempty"`
	FieldValue  string `json:"field_value,omitempty" yaml:"field_value,omitempty"`
	LiteralOnly bool   `json:"literal_only,omitempty" yaml:"literal_only,omitempty"`
	Position    InsertPosition `json:"-" yaml:"-"`
	PositionRaw string `json:"position,omitempty" yaml:"position,omitempty"`

	// Enum operations.
	EnumName       string `json:"enum_name,omitempty" yaml:"enum_name,omitempty"`
	VariantDef     string `json:"variant_def,omitempty" yaml:"variant_def,omitempty"`
	VariantName    string `json:"variant_name,omitempty" yaml:"variant_name,omitempty"`
	CanonicalPath  string `json:"canonical_path,omitempty" yaml:"canonical_path,omitempty"`
	NewVariantName string `json:"new_variant_name,omitempty" yaml:"new_variant_name,omitempty"`

	// Match-arm operations.
	MatchArm     string `json:"match_arm,omitempty" yaml:"match_arm,omitempty"`
	AutoDetect   bool   `json:"auto_detect,omitempty" yaml:"auto_detect,omitempty"`
	FunctionName string `json:"function_name,omitempty" yaml:"function_name,omitempty"`

	// Impl/derive/use operations.
	MethodDef  string   `json:"method_def,omitempty" yaml:"method_def,omitempty"`
	DeriveList []string `json:"derive_list,omitempty" yaml:"derive_list,omitempty"`
	UsePath    string   `json:"use_path,omitempty" yaml:"use_path,omitempty"`

	// Transform operation.
	Kind          string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	NodeType      string          `json:"node_type,omitempty" yaml:"node_type,omitempty"`
	NameFilter    string          `json:"name_filter,omitempty" yaml:"name_filter,omitempty"`
	ContentFilter string          `json:"content_filter,omitempty" yaml:"content_filter,omitempty"`
	Action        TransformAction `json:"-" yaml:"-"`
	ActionRaw     string          `json:"action,omitempty" yaml:"action,omitempty"`

	// Rename operations.
	OldName     string   `json:"old_name,omitempty" yaml:"old_name,omitempty"`
	NewName     string   `json:"new_name,omitempty" yaml:"new_name,omitempty"`
	Validate    bool     `json:"validate,omitempty" yaml:"validate,omitempty"`
	EditMode    EditMode `json:"-" yaml:"-"`
	EditModeRaw string   `json:"edit_mode,omitempty" yaml:"edit_mode,omitempty"`

	// Doc comment operations.
	TargetName  string          `json:"target_name,omitempty" yaml:"target_name,omitempty"`
	DocText     string          `json:"doc_text,omitempty" yaml:"doc_text,omitempty"`
	DocStyle    DocCommentStyle `json:"-" yaml:"-"`
	DocStyleRaw string          `json:"doc_style,omitempty" yaml:"doc_style,omitempty"`
}

// BatchSpec is the declarative batch-executor input (spec.md §4.9 / §6):
// a base path and an ordered list of operations.
type BatchSpec struct {
	BasePath   string      `json:"base_path" yaml:"base_path"`
	Operations []Operation `json:"operations" yaml:"operations"`
}

// Normalize resolves the textual Raw fields (as read from a batch spec
// file) into their structured counterparts, defaulting each to its zero
// value when unset. Called once after unmarshaling, since neither
// encoding/json nor yaml.v3 can target a tagged union type directly.
func (o *Operation) Normalize() error {
	pos, err := ParsePosition(o.PositionRaw)
	if err != nil {
		return err
	}
	o.Position = pos

	if mode, ok := ParseEditMode(o.EditModeRaw); ok {
		o.EditMode = mode
	} else {
		return errInvalidEditMode(o.EditModeRaw)
	}

	if style, ok := ParseDocStyle(o.DocStyleRaw); ok {
		o.DocStyle = style
	} else {
		return errInvalidDocStyle(o.DocStyleRaw)
	}

	if o.Type == OpTransform {
		action, ok := ParseTransformAction(o.ActionRaw)
		if !ok {
			return errInvalidTransformAction(o.ActionRaw)
		}
		o.Action = action
	}
	return nil
}
