package parser

import (
	"github.com/openparl/legisearch/internal/core/domain"
)

// sectionContext carries the ancestor state of the depth-first body walk.
// A section nested anywhere under a Schedule container is tagged as a
// schedule section and inherits that schedule's heading metadata no matter
// how deep the nesting (List, FormGroup and TableGroup all resolve to the
// same schedule ancestor).
type sectionContext struct {
	parentLabel string
	partLabel   string
	sectionType domain.SectionType
	schedule    *domain.ScheduleInfo
}

func extractSections(root *node) []domain.Section {
	var out []domain.Section

	body := root.child("Body")
	if body != nil {
		walkSections(body, sectionContext{sectionType: domain.SectionOrdinary}, &out)
	}
	for _, schedule := range root.elements("Schedule") {
		walkSchedule(schedule, &out)
	}
	return out
}

func walkSections(n *node, ctx sectionContext, out *[]domain.Section) {
	for _, child := range n.children {
		if child.kind != elementNode {
			continue
		}
		switch child.local() {
		case "Heading":
			// Same scoping rule as definition extraction: only a Part
			// heading opens a Part, any other labeled heading closes it.
			if label := child.child("Label"); label != nil {
				if text := label.plainText(); isPartLabel(text) {
					ctx.partLabel = text
				} else {
					ctx.partLabel = ""
				}
			}
		case "Section":
			section := buildSection(child, ctx)
			*out = append(*out, section)
			nested := ctx
			nested.parentLabel = section.Label
			walkSections(child, nested, out)
		case "Schedule":
			walkSchedule(child, out)
		case "FormGroup":
			nested := ctx
			if nested.schedule == nil {
				nested.sectionType = domain.SectionForm
			}
			walkSections(child, nested, out)
		case "TableGroup":
			nested := ctx
			if nested.schedule == nil {
				nested.sectionType = domain.SectionTable
			}
			walkSections(child, nested, out)
		default:
			walkSections(child, ctx, out)
		}
	}
}

// walkSchedule resolves the schedule heading once and stamps it on every
// section nested anywhere beneath the container.
func walkSchedule(schedule *node, out *[]domain.Section) {
	info := scheduleInfo(schedule)
	ctx := sectionContext{
		sectionType: domain.SectionSchedule,
		schedule:    info,
	}
	walkSections(schedule, ctx, out)
}

func scheduleInfo(schedule *node) *domain.ScheduleInfo {
	info := &domain.ScheduleInfo{}

	heading := schedule.child("ScheduleFormHeading")
	if heading == nil {
		heading = schedule.child("ScheduleHeading")
	}
	if heading != nil {
		if label := heading.child("Label"); label != nil {
			info.Label = label.plainText()
		}
		if title := heading.child("TitleText"); title != nil {
			info.Title = title.plainText()
		}
		// Verbatim text; nil when the sub-element is absent, never "".
		if ref := heading.child("OriginatingRef"); ref != nil {
			verbatim := ref.plainText()
			info.OriginatingRef = &verbatim
		}
	}
	if info.Label == "" {
		if label, ok := schedule.attr("label"); ok {
			info.Label = label
		}
	}
	return info
}

func buildSection(n *node, ctx sectionContext) domain.Section {
	section := domain.Section{
		Type:        ctx.sectionType,
		ParentLabel: ctx.parentLabel,
		PartLabel:   ctx.partLabel,
		Schedule:    ctx.schedule,
	}
	if label := n.child("Label"); label != nil {
		section.Label = label.plainText()
	}
	if note := n.child("MarginalNote"); note != nil {
		section.MarginalNote = note.plainText()
	}
	section.Text = renderBody(n)
	return section
}
