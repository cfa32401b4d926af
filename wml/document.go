package wml

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wmlconv/common"
	"wmlconv/opc"
)

// Story is a loaded XML part together with its own relationships, images and
// hyperlinks inside headers or notes resolve through them.
type Story struct {
	Part string
	Root *etree.Element
	Rels *opc.Relationships
}

// Document is the main document part with every auxiliary part it refers to.
// Optional parts which are absent stay nil.
type Document struct {
	Pkg  *opc.Package
	Main *Story
	Body *etree.Element

	Styles    *Story
	Numbering *Story
	Footnotes *Story
	Endnotes  *Story
	Comments  *Story
	Settings  *Story

	// header and footer parts keyed by relationship id of the main part
	Headers map[string]*Story
	Footers map[string]*Story
}

type auxSlot struct {
	relType string
	relID   string
	part    string
	story   *Story
	err     error
}

// Load reads main document and fetches auxiliary parts concurrently before
// any tree walking starts. Problems with optional parts are reported as
// warnings, only main document problems are fatal.
func Load(ctx context.Context, pkg *opc.Package, warns *common.Warnings, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	mainName, err := pkg.MainDocument()
	if err != nil {
		return nil, err
	}
	main, err := loadStory(pkg, mainName)
	if err != nil {
		return nil, common.NewError(common.CodeXMLInvalid, err, "unable to parse main document")
	}
	if main == nil {
		return nil, common.NewError(common.CodeInvalidDocx, nil, "main document part %q is missing", mainName)
	}
	body := Child(main.Root, "body")
	if !Is(main.Root, "document") || body == nil {
		return nil, common.NewError(common.CodeInvalidDocx, nil, "part %q is not a word processing document", mainName)
	}

	doc := &Document{
		Pkg:     pkg,
		Main:    main,
		Body:    body,
		Headers: make(map[string]*Story),
		Footers: make(map[string]*Story),
	}

	slots := doc.auxSlots()
	g, gctx := errgroup.WithContext(ctx)
	for _, slot := range slots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slot.story, slot.err = loadStory(pkg, slot.part)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading document parts: %w", err)
	}

	// gathered in relationship order so warnings are stable
	for _, slot := range slots {
		switch {
		case slot.err != nil:
			warns.Add(common.CodePartInvalid, slot.part, "unable to parse part: %v", slot.err)
			continue
		case slot.story == nil:
			warns.Add(common.CodePartMissing, slot.part, "part referenced by relationship %s is missing", slot.relID)
			continue
		}
		doc.assign(slot)
	}
	log.Debug("Document loaded",
		zap.String("main", mainName),
		zap.Int("parts", len(slots)),
		zap.Int("headers", len(doc.Headers)),
		zap.Int("footers", len(doc.Footers)))
	return doc, nil
}

func (d *Document) auxSlots() []*auxSlot {
	var slots []*auxSlot
	single := map[string]bool{}
	for _, rel := range d.Main.Rels.List() {
		if rel.External {
			continue
		}
		switch rel.Type {
		case opc.RelTypeStyles, opc.RelTypeNumbering, opc.RelTypeFootnotes,
			opc.RelTypeEndnotes, opc.RelTypeComments, opc.RelTypeSettings:
			if single[rel.Type] {
				continue
			}
			single[rel.Type] = true
		case opc.RelTypeHeader, opc.RelTypeFooter:
		default:
			continue
		}
		slots = append(slots, &auxSlot{
			relType: rel.Type,
			relID:   rel.ID,
			part:    d.Main.Rels.TargetPart(rel),
		})
	}
	return slots
}

func (d *Document) assign(slot *auxSlot) {
	switch slot.relType {
	case opc.RelTypeStyles:
		d.Styles = slot.story
	case opc.RelTypeNumbering:
		d.Numbering = slot.story
	case opc.RelTypeFootnotes:
		d.Footnotes = slot.story
	case opc.RelTypeEndnotes:
		d.Endnotes = slot.story
	case opc.RelTypeComments:
		d.Comments = slot.story
	case opc.RelTypeSettings:
		d.Settings = slot.story
	case opc.RelTypeHeader:
		d.Headers[slot.relID] = slot.story
	case opc.RelTypeFooter:
		d.Footers[slot.relID] = slot.story
	}
}

// loadStory returns nil story without error when part is absent.
func loadStory(pkg *opc.Package, name string) (*Story, error) {
	xml, ok, err := pkg.PartXML(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	rels, err := pkg.Relationships(name)
	if err != nil {
		return nil, err
	}
	return &Story{Part: name, Root: xml.Root(), Rels: rels}, nil
}

// Stories returns all loaded stories with content which preprocessing
// should see: main document, notes, comments, headers and footers.
func (d *Document) Stories() []*Story {
	res := []*Story{d.Main}
	for _, s := range []*Story{d.Footnotes, d.Endnotes, d.Comments} {
		if s != nil {
			res = append(res, s)
		}
	}
	for _, rel := range d.Main.Rels.List() {
		if s, ok := d.Headers[rel.ID]; ok {
			res = append(res, s)
		}
		if s, ok := d.Footers[rel.ID]; ok {
			res = append(res, s)
		}
	}
	return res
}
