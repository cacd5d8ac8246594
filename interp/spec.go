package interp

import "strings"

// CompileSpec turns a spec block (e.g. `[value [integer!] /only]`) into a
// parameter list and meta record. A transient binder rejects duplicate
// parameter/refinement names within one spec.
func CompileSpec(specBlock *Series) ([]*Param, *ActionMeta, error) {
	binder := map[*Symbol]bool{}
	var params []*Param
	meta := &ActionMeta{Notes: map[string]string{}}

	var underRefinement *Symbol
	cells := specBlock.Cells
	for i := 0; i < len(cells); i++ {
		c := cells[i]
		switch c.Heart {
		case HeartText:
			if strings.HasPrefix(c.AsText(), "<") {
				continue // a tag attribute belongs to the parameter before it; see consumeAttributesAndTypes
			}
			if len(params) == 0 {
				meta.Description = c.AsText()
			} else {
				meta.Notes[params[len(params)-1].Name.String()] = c.AsText()
			}

		case HeartIssue:
			// refinement marker spelled `/name` is scanned upstream as an
			// issue cell carrying the symbol in Sym for this port
			sym := c.AsSymbol()
			if sym == nil {
				return nil, nil, &RaisedError{Kind: "binding", Message: "malformed refinement in spec"}
			}
			if binder[sym] {
				return nil, nil, &RaisedError{Kind: "binding", Message: "duplicate parameter name: " + sym.String()}
			}
			binder[sym] = true
			p := &Param{Name: sym, Class: ParamRefinement, IsRefinement: true}
			params = append(params, p)
			underRefinement = sym

		case HeartWord, HeartGetWord, HeartMetaWord:
			sym := c.AsSymbol()
			if sym == nil {
				return nil, nil, &RaisedError{Kind: "binding", Message: "malformed parameter in spec"}
			}
			if binder[sym] {
				return nil, nil, &RaisedError{Kind: "binding", Message: "duplicate parameter name: " + sym.String()}
			}
			binder[sym] = true
			p := &Param{Name: sym, Class: classForWordHeart(c.Heart), Under: underRefinement}
			if sym.String() == "return" {
				p.Class = ParamReturn
			}
			params = append(params, p)
			i = consumeAttributesAndTypes(cells, i, p)
		}
	}

	for _, p := range params {
		cacheVanishable(p)
	}
	return params, meta, nil
}

func classForWordHeart(h Heart) ParamClass {
	switch h {
	case HeartGetWord:
		return ParamSoftQuote
	case HeartMetaWord:
		return ParamMeta
	default:
		return ParamNormal
	}
}

// consumeAttributesAndTypes scans the spec cells immediately following a
// parameter word for a `[type!...]` typeset block and `<tag>` attributes,
// returning the new cursor index.
func consumeAttributesAndTypes(cells []Cell, i int, p *Param) int {
	for j := i + 1; j < len(cells); j++ {
		switch cells[j].Heart {
		case HeartBlock:
			p.Types = typeSetFromBlock(cells[j].Array())
			i = j
		case HeartText:
			text := cells[j].AsText()
			if !strings.HasPrefix(text, "<") {
				return i
			}
			tag := strings.TrimPrefix(text, "<")
			tag = strings.TrimSuffix(tag, ">")
			switch tag {
			case "opt":
				p.Attrs |= AttrOptional
			case "end":
				p.Attrs |= AttrEndable
			case "void":
				p.Attrs |= AttrVoidOK
			case "skip":
				p.Attrs |= AttrSkippable
				if p.Class == ParamNormal {
					p.Class = ParamHardQuote
				}
			case "variadic":
				p.Attrs |= AttrVariadic
			default:
				return j - 1
			}
			i = j
		default:
			return i
		}
	}
	return i
}

func typeSetFromBlock(arr *Series) TypeSet {
	if arr == nil {
		return nil
	}
	ts := TypeSet{}
	for _, c := range arr.Cells {
		if c.AsSymbol() != nil {
			ts[symbolHeart(c.AsSymbol())] = true
		}
	}
	return ts
}

// symbolHeart maps a type-name word (e.g. `integer!`) to the Heart it
// names. Unrecognized names fall back to HeartBlock, matching this
// simplified port's reduced typeset vocabulary.
func symbolHeart(sym *Symbol) Heart {
	switch sym.String() {
	case "integer!":
		return HeartInteger
	case "decimal!":
		return HeartDecimal
	case "text!", "string!":
		return HeartText
	case "word!":
		return HeartWord
	case "block!":
		return HeartBlock
	case "group!":
		return HeartGroup
	case "logic!":
		return HeartLogic
	case "action!":
		return HeartAction
	case "context!", "object!":
		return HeartContext
	case "error!":
		return HeartError
	default:
		return HeartBlock
	}
}

// cacheVanishable marks a parameter whose only typeset entry is [block!].
// Nothing else reads the Vanishable flag; it has no effect on enfix
// first-parameter caching.
func cacheVanishable(p *Param) {
	if len(p.Types) == 1 && p.Types[HeartBlock] {
		p.Vanishable = true
	}
}
