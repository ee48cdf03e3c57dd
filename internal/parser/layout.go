package parser

import (
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
)

type target int

const (
	targetX86_64 target = iota
	targetX86
	targetARM
	targetARM64
)

func targetOf(cpu string) target {
	switch strings.ToLower(cpu) {
	case "x86", "i386", "i686", "ia32":
		return targetX86
	case "arm", "arm32", "armv7":
		return targetARM
	case "arm64", "aarch64":
		return targetARM64
	default:
		return targetX86_64
	}
}

// dataLayout holds the target-dependent builtin sizes.
type dataLayout struct {
	pointer         int64
	long            int64
	longDouble      int64
	longDoubleAlign int64
	int64Align      int64
}

func layoutFor(t target) dataLayout {
	switch t {
	case targetX86:
		return dataLayout{pointer: 4, long: 4, longDouble: 12, longDoubleAlign: 4, int64Align: 4}
	case targetARM:
		return dataLayout{pointer: 4, long: 4, longDouble: 8, longDoubleAlign: 8, int64Align: 8}
	case targetARM64:
		return dataLayout{pointer: 8, long: 8, longDouble: 16, longDoubleAlign: 16, int64Align: 8}
	default:
		return dataLayout{pointer: 8, long: 8, longDouble: 16, longDoubleAlign: 16, int64Align: 8}
	}
}

// PointerWidth returns the pointer size in bytes for the unit's target.
func (u *Unit) PointerWidth() int64 { return u.layout.pointer }

func (u *Unit) builtinSize(kind frontend.TypeKind) (int64, int64) {
	l := u.layout
	switch kind {
	case frontend.TypeBool, frontend.TypeCharS, frontend.TypeSChar, frontend.TypeUChar:
		return 1, 1
	case frontend.TypeShort, frontend.TypeUShort, frontend.TypeChar16:
		return 2, 2
	case frontend.TypeInt, frontend.TypeUInt, frontend.TypeFloat, frontend.TypeChar32, frontend.TypeWChar:
		return 4, 4
	case frontend.TypeLong, frontend.TypeULong:
		return l.long, l.long
	case frontend.TypeLongLong, frontend.TypeULongLong, frontend.TypeDouble:
		return 8, l.int64Align
	case frontend.TypeInt128, frontend.TypeUInt128:
		return 16, 16
	case frontend.TypeLongDouble:
		return l.longDouble, l.longDoubleAlign
	case frontend.TypeNullPtr:
		return l.pointer, l.pointer
	}
	return -1, -1
}

// wellKnownSizes covers library typedef names that appear without their
// headers.
func (u *Unit) wellKnownSize(name string) int64 {
	switch strings.TrimPrefix(name, "std::") {
	case "int8_t", "uint8_t", "int_least8_t", "uint_least8_t", "byte":
		return 1
	case "int16_t", "uint16_t", "int_least16_t", "uint_least16_t":
		return 2
	case "int32_t", "uint32_t", "int_least32_t", "uint_least32_t":
		return 4
	case "int64_t", "uint64_t", "int_least64_t", "uint_least64_t", "intmax_t", "uintmax_t":
		return 8
	case "size_t", "ssize_t", "ptrdiff_t", "intptr_t", "uintptr_t", "off_t", "nullptr_t":
		return u.layout.pointer
	}
	return -1
}

// sizeAndAlign returns the size and alignment of t, -1 when unknown.
func (u *Unit) sizeAndAlign(t *ctype) (int64, int64) {
	if t.size != -2 {
		return t.size, t.align
	}
	// Guard against recursion through incomplete records.
	t.size, t.align = -1, -1
	size, align := u.computeSize(t)
	t.size, t.align = size, align
	return size, align
}

func (u *Unit) computeSize(t *ctype) (int64, int64) {
	if t.unqual != nil {
		return u.sizeAndAlign(t.unqual)
	}
	switch t.kind {
	case frontend.TypePointer, frontend.TypeMemberPointer:
		return u.layout.pointer, u.layout.pointer
	case frontend.TypeLValueReference, frontend.TypeRValueReference:
		return u.sizeAndAlign(t.elem)
	case frontend.TypeConstantArray:
		size, align := u.sizeAndAlign(t.elem)
		if size < 0 {
			return -1, -1
		}
		return size * t.count, align
	case frontend.TypeElaborated:
		return u.sizeAndAlign(t.elem)
	case frontend.TypeTypedef:
		under := u.underlyingOf(t.decl)
		if under == nil {
			return -1, -1
		}
		return u.sizeAndAlign(under)
	case frontend.TypeEnum:
		under := u.underlyingOf(t.decl)
		if under == nil {
			return 4, 4
		}
		return u.sizeAndAlign(under)
	case frontend.TypeRecord:
		l := u.recordLayout(t.decl)
		if l == nil {
			return -1, -1
		}
		return l.size, l.align
	case frontend.TypeUnexposed:
		if size := u.wellKnownSize(t.spelling); size > 0 {
			return size, size
		}
		return -1, -1
	}
	if t.kind.IsBuiltin() {
		return u.builtinSize(t.kind)
	}
	return -1, -1
}

// recordLayout is the computed layout of a complete record.
type recordLayout struct {
	size    int64
	align   int64
	offsets map[*cursor]int64
	hasVptr bool
	empty   bool
}

// recordLayout lays out a record the way the Itanium ABI does for plain
// data: bases first, then a vtable pointer when needed, then fields in
// order with bit-fields packed into storage units of their declared type.
// Dependent templates and incomplete records have no layout.
func (u *Unit) recordLayout(c *cursor) *recordLayout {
	if c == nil {
		return nil
	}
	if c.layout != nil {
		return c.layout
	}
	pattern := c
	if c.pattern != nil {
		pattern = c.pattern
	}
	if !pattern.isDef || c.layingOut {
		return nil
	}
	if c.kind == frontend.CursorClassTemplate || c.kind == frontend.CursorClassTemplatePartialSpecialization {
		return nil
	}
	c.layingOut = true
	defer func() { c.layingOut = false }()

	l := &recordLayout{offsets: make(map[*cursor]int64), empty: true}
	union := pattern.recordKind == frontend.CursorUnionDecl
	var offset, maxAlign, unionSize int64 = 0, 1, 0

	for _, child := range pattern.children {
		if child.kind != frontend.CursorCXXBaseSpecifier {
			continue
		}
		bt := u.typeIn(child, c.subst)
		bl := u.recordLayout(bt.recordDecl())
		if bl == nil {
			return nil
		}
		if child.flags.Has(frontend.FlagVirtualBase) {
			l.hasVptr = true
		}
		if bl.empty {
			continue
		}
		if bl.hasVptr && offset == 0 {
			l.hasVptr = true
		}
		offset = alignUp(offset, bl.align) + bl.size
		maxAlign = max(maxAlign, bl.align)
		l.empty = false
	}
	if !l.hasVptr && pattern.hasVirtual {
		l.hasVptr = true
	}
	if l.hasVptr {
		if offset == 0 {
			offset = u.layout.pointer
		}
		maxAlign = max(maxAlign, u.layout.pointer)
		l.empty = false
	}

	var unitStart, unitSize, bitsUsed int64 = 0, 0, -1
	closeUnit := func() {
		bitsUsed = -1
	}
	for _, m := range pattern.children {
		isField := m.kind == frontend.CursorFieldDecl || m.anonField
		if !isField {
			continue
		}
		var ft *ctype
		if m.anonField {
			ft = u.declType(m)
		} else {
			ft = u.typeIn(m, c.subst)
		}
		size, align := u.sizeAndAlign(ft)
		if b := ft.base().kind; b == frontend.TypeLValueReference || b == frontend.TypeRValueReference {
			size, align = u.layout.pointer, u.layout.pointer
		}
		if size < 0 {
			return nil
		}
		if pattern.packed {
			align = 1
		}
		if m.align > align {
			align = m.align
		}
		l.empty = false

		if m.bitWidth >= 0 {
			width := int64(m.bitWidth)
			if width == 0 {
				closeUnit()
				offset = alignUp(offset, align)
				continue
			}
			if union {
				l.offsets[m] = 0
				unionSize = max(unionSize, (width+7)/8)
				maxAlign = max(maxAlign, align)
				continue
			}
			if bitsUsed >= 0 && unitSize == size && bitsUsed+width <= size*8 {
				bitsUsed += width
			} else {
				unitStart = alignUp(offset, align)
				unitSize = size
				bitsUsed = width
				offset = unitStart + size
			}
			l.offsets[m] = unitStart
			maxAlign = max(maxAlign, align)
			continue
		}
		closeUnit()
		if union {
			l.offsets[m] = 0
			unionSize = max(unionSize, size)
		} else {
			offset = alignUp(offset, align)
			l.offsets[m] = offset
			offset += size
		}
		maxAlign = max(maxAlign, align)
	}

	if pattern.align > maxAlign {
		maxAlign = pattern.align
	}
	size := offset
	if union {
		size = unionSize
	}
	size = alignUp(size, maxAlign)
	if size == 0 && u.opts.Language != C {
		size = 1
	}
	l.size, l.align = size, maxAlign
	c.layout = l
	return l
}

// fieldOffset returns a field's byte offset within its record.
func (u *Unit) fieldOffset(c *cursor) int64 {
	if c.kind != frontend.CursorFieldDecl || c.semantic == nil {
		return -1
	}
	l := u.recordLayout(c.semantic)
	if l == nil {
		return -1
	}
	if off, ok := l.offsets[c]; ok {
		return off
	}
	return -1
}

func alignUp(v, align int64) int64 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) / align * align
}
