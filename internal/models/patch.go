package models

// TransmittalPatch lists every field a draft may change. A nil field is left
// untouched; JSON null decodes to nil, so a patch can never clear a field.
type TransmittalPatch struct {
	TransmittalType   *string         `json:"transmittal_type" validate:"omitempty,min=1"`
	Department        *string         `json:"department" validate:"omitempty,min=1"`
	DesignStage       *string         `json:"design_stage"`
	TransmittalDate   *Date           `json:"transmittal_date"`
	SendTo            *string         `json:"send_to" validate:"omitempty,min=1"`
	Salutation        *string         `json:"salutation" validate:"omitempty,min=1"`
	RecipientName     *string         `json:"recipient_name" validate:"omitempty,min=1"`
	SenderName        *string         `json:"sender_name" validate:"omitempty,min=1"`
	SenderDesignation *string         `json:"sender_designation" validate:"omitempty,min=1"`
	SendMode          *SendMode       `json:"send_mode" validate:"omitempty,oneof=Hardcopy Softcopy"`
	Documents         *[]DocumentItem `json:"documents"`
	Title             *string         `json:"title" validate:"omitempty,min=1"`
	ProjectName       *string         `json:"project_name"`
	Purpose           *string         `json:"purpose"`
	Remarks           *string         `json:"remarks"`
}

// Empty reports whether the patch carries no field at all
func (p TransmittalPatch) Empty() bool {
	return p == TransmittalPatch{}
}

// Apply copies the present fields onto t and returns the names of the fields it set.
// DocumentCount follows Documents whenever the list is replaced.
func (p TransmittalPatch) Apply(t *Transmittal) []string {
	var changed []string
	str := func(name string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = append(changed, name)
		}
	}
	optional := func(name string, dst **string, src *string) {
		if src != nil {
			v := *src
			*dst = &v
			changed = append(changed, name)
		}
	}

	str("transmittal_type", &t.TransmittalType, p.TransmittalType)
	str("department", &t.Department, p.Department)
	optional("design_stage", &t.DesignStage, p.DesignStage)
	if p.TransmittalDate != nil {
		t.TransmittalDate = *p.TransmittalDate
		changed = append(changed, "transmittal_date")
	}
	str("send_to", &t.SendTo, p.SendTo)
	str("salutation", &t.Salutation, p.Salutation)
	str("recipient_name", &t.RecipientName, p.RecipientName)
	str("sender_name", &t.SenderName, p.SenderName)
	str("sender_designation", &t.SenderDesignation, p.SenderDesignation)
	if p.SendMode != nil {
		t.SendMode = *p.SendMode
		changed = append(changed, "send_mode")
	}
	if p.Documents != nil {
		t.SetDocuments(*p.Documents)
		changed = append(changed, "documents")
	}
	str("title", &t.Title, p.Title)
	optional("project_name", &t.ProjectName, p.ProjectName)
	optional("purpose", &t.Purpose, p.Purpose)
	optional("remarks", &t.Remarks, p.Remarks)

	return changed
}

// PatchBuilder assembles a TransmittalPatch field by field
type PatchBuilder struct {
	patch TransmittalPatch
}

// NewPatch starts an empty patch
func NewPatch() *PatchBuilder {
	return &PatchBuilder{}
}

func (b *PatchBuilder) TransmittalType(v string) *PatchBuilder {
	b.patch.TransmittalType = &v
	return b
}

func (b *PatchBuilder) Department(v string) *PatchBuilder {
	b.patch.Department = &v
	return b
}

func (b *PatchBuilder) DesignStage(v string) *PatchBuilder {
	b.patch.DesignStage = &v
	return b
}

func (b *PatchBuilder) TransmittalDate(v Date) *PatchBuilder {
	b.patch.TransmittalDate = &v
	return b
}

func (b *PatchBuilder) SendTo(v string) *PatchBuilder {
	b.patch.SendTo = &v
	return b
}

func (b *PatchBuilder) Salutation(v string) *PatchBuilder {
	b.patch.Salutation = &v
	return b
}

func (b *PatchBuilder) RecipientName(v string) *PatchBuilder {
	b.patch.RecipientName = &v
	return b
}

func (b *PatchBuilder) SenderName(v string) *PatchBuilder {
	b.patch.SenderName = &v
	return b
}

func (b *PatchBuilder) SenderDesignation(v string) *PatchBuilder {
	b.patch.SenderDesignation = &v
	return b
}

func (b *PatchBuilder) SendMode(v SendMode) *PatchBuilder {
	b.patch.SendMode = &v
	return b
}

// Documents replaces the whole list; pass an empty slice to clear it
func (b *PatchBuilder) Documents(v []DocumentItem) *PatchBuilder {
	docs := make([]DocumentItem, len(v))
	copy(docs, v)
	b.patch.Documents = &docs
	return b
}

func (b *PatchBuilder) Title(v string) *PatchBuilder {
	b.patch.Title = &v
	return b
}

func (b *PatchBuilder) ProjectName(v string) *PatchBuilder {
	b.patch.ProjectName = &v
	return b
}

func (b *PatchBuilder) Purpose(v string) *PatchBuilder {
	b.patch.Purpose = &v
	return b
}

func (b *PatchBuilder) Remarks(v string) *PatchBuilder {
	b.patch.Remarks = &v
	return b
}

// Build returns the assembled patch
func (b *PatchBuilder) Build() TransmittalPatch {
	return b.patch
}
