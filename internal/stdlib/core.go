// Package stdlib registers Petra's built-in functions. Everything here
// goes through the bridge's declarative host-function exposure, the same
// path an embedding application uses for its own natives.
package stdlib

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"petra/internal/bridge"
	"petra/internal/cell"
	"petra/internal/interp"
)

// expose registers a builtin and drops the returned wrapper: the
// interpreter's own binding keeps the code cell alive.
func expose(in *interp.Interp, name string, spec bridge.BindSpec, body bridge.Body) error {
	sub, err := bridge.Expose(in, name, spec, body)
	if err != nil {
		return err
	}
	sub.Release()
	return nil
}

// RegisterCore binds the core builtins. Output of say goes to w.
func RegisterCore(in *interp.Interp, w io.Writer) error {
	anyList := bridge.BindSpec{Trailing: bridge.TrailList, TrailType: bridge.TAny}

	if err := expose(in, "say", anyList, func(c *bridge.Ctx) ([]any, error) {
		parts := make([]string, 0, len(c.List()))
		for _, rc := range c.RawList() {
			parts = append(parts, cell.Stringify(rc))
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
		return []any{int64(1)}, nil
	}); err != nil {
		return err
	}

	one := bridge.BindSpec{Params: []bridge.Param{{Name: "value", Type: bridge.TAny}}}

	if err := expose(in, "len", one, func(c *bridge.Ctx) ([]any, error) {
		rc := c.Raw("value")
		if rc.Tag() == cell.TagRef {
			rc = rc.Target()
		}
		rt := c.Interp().Runtime()
		switch rc.Tag() {
		case cell.TagStr:
			return []any{int64(len(rc.StrVal()))}, nil
		case cell.TagArray:
			return []any{int64(rt.ArrayLen(rc))}, nil
		case cell.TagHash:
			return []any{int64(rt.HashLen(rc))}, nil
		case cell.TagUndef:
			return []any{int64(0)}, nil
		}
		return []any{int64(len(cell.Stringify(rc)))}, nil
	}); err != nil {
		return err
	}

	if err := expose(in, "type", one, func(c *bridge.Ctx) ([]any, error) {
		return []any{c.Raw("value").Tag().String()}, nil
	}); err != nil {
		return err
	}

	if err := expose(in, "defined", one, func(c *bridge.Ctx) ([]any, error) {
		return []any{c.Raw("value").Tag() != cell.TagUndef}, nil
	}); err != nil {
		return err
	}

	joinSpec := bridge.BindSpec{
		Params:    []bridge.Param{{Name: "sep", Type: bridge.TStr}},
		Trailing:  bridge.TrailList,
		TrailType: bridge.TAny,
	}
	if err := expose(in, "join", joinSpec, func(c *bridge.Ctx) ([]any, error) {
		parts := make([]string, 0, len(c.List()))
		for _, rc := range c.RawList() {
			parts = append(parts, cell.Stringify(rc))
		}
		return []any{strings.Join(parts, c.Str("sep"))}, nil
	}); err != nil {
		return err
	}

	pushSpec := bridge.BindSpec{
		Params:    []bridge.Param{{Name: "array", Type: bridge.TAny}},
		Trailing:  bridge.TrailList,
		TrailType: bridge.TAny,
	}
	if err := expose(in, "push", pushSpec, func(c *bridge.Ctx) ([]any, error) {
		rt := c.Interp().Runtime()
		arr := c.Raw("array")
		if arr.Tag() == cell.TagRef {
			arr = arr.Target()
		}
		if arr.Tag() != cell.TagArray {
			return nil, fmt.Errorf("push: cannot push onto %s value", arr.Tag())
		}
		for _, rc := range c.RawList() {
			rt.Incref(rc)
			rt.ArrayPush(arr, rc)
		}
		return []any{int64(rt.ArrayLen(arr))}, nil
	}); err != nil {
		return err
	}

	if err := expose(in, "keys", one, func(c *bridge.Ctx) ([]any, error) {
		rt := c.Interp().Runtime()
		h := c.Raw("value")
		if h.Tag() == cell.TagRef {
			h = h.Target()
		}
		if h.Tag() != cell.TagHash {
			return nil, fmt.Errorf("keys: cannot list keys of %s value", h.Tag())
		}
		var ks []string
		rt.HashEach(h, func(k string, _ *cell.Cell) { ks = append(ks, k) })
		sort.Strings(ks)
		arr := rt.Array()
		for _, k := range ks {
			rt.ArrayPush(arr, rt.Str(k))
		}
		ref := rt.Ref(arr)
		rt.Decref(arr)
		return []any{bridge.Owned{C: ref}}, nil
	}); err != nil {
		return err
	}

	return nil
}
