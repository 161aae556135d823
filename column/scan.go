package column

// scanWindow returns the end row index (exclusive) a scan should walk,
// per spec.md §4.1: "Walk [0, min(published, limit))". limit <= 0 means
// "no limit" (bounded only by the published watermark and capacity).
func (c *PageColumn[T]) scanWindow(limit int) int {
	pub := int(c.published.Load())
	end := pub
	if end > c.capacity {
		end = c.capacity
	}
	if limit > 0 && limit < end {
		end = limit
	}
	return end
}

// scan walks [0, scanWindow(limit)) page by page, collecting ascending row
// indices for which pred holds. Unrolling is not applied here; it would be
// a pure optimization per spec.md §4.1 and must not change results, so a
// straightforward loop is kept for clarity.
func (c *PageColumn[T]) scan(limit int, pred func(v T, present bool) bool) []uint32 {
	end := c.scanWindow(limit)
	if end <= 0 {
		return []uint32{}
	}
	out := make([]uint32, 0, 16)
	firstPage := 0
	lastPage := (end - 1) / c.pageSize
	for pageIdx := firstPage; pageIdx <= lastPage; pageIdx++ {
		p := c.pages[pageIdx].Load()
		if p == nil {
			continue
		}
		start := pageIdx * c.pageSize
		pageEnd := start + c.pageSize
		if pageEnd > end {
			pageEnd = end
		}
		for row := start; row < pageEnd; row++ {
			off := row - start
			flag := p.present[off]
			v := p.values[off]
			if c.compress && flag == flagCompressed {
				// Scans compare logical values, so a compressed cell must
				// be decoded before the predicate sees it.
				if decoded, ok := any(v).(string); ok {
					if raw, err := snappyDecode(decoded); err == nil {
						v = any(raw).(T)
					}
				}
			}
			if pred(v, flag != flagAbsent) {
				out = append(out, uint32(row))
			}
		}
	}
	return out
}

// ScanEq returns ascending row indices where the present value equals target.
func (c *PageColumn[T]) ScanEq(target T, limit int) []uint32 {
	return c.scanComparable(limit, func(v T) bool { return v == target })
}

// ScanLt returns ascending row indices where the present value is < target.
func (c *PageColumn[T]) ScanLt(target T, limit int) []uint32 {
	return c.scanComparable(limit, func(v T) bool { return v < target })
}

// ScanLe returns ascending row indices where the present value is <= target.
func (c *PageColumn[T]) ScanLe(target T, limit int) []uint32 {
	return c.scanComparable(limit, func(v T) bool { return v <= target })
}

// ScanGt returns ascending row indices where the present value is > target.
func (c *PageColumn[T]) ScanGt(target T, limit int) []uint32 {
	return c.scanComparable(limit, func(v T) bool { return v > target })
}

// ScanGe returns ascending row indices where the present value is >= target.
func (c *PageColumn[T]) ScanGe(target T, limit int) []uint32 {
	return c.scanComparable(limit, func(v T) bool { return v >= target })
}

// ScanBetween returns ascending row indices where lo <= value <= hi.
func (c *PageColumn[T]) ScanBetween(lo, hi T, limit int) []uint32 {
	return c.scanComparable(limit, func(v T) bool { return v >= lo && v <= hi })
}

// ScanIn returns ascending row indices whose value is one of targets.
// For small target sets (<=8) a linear scan is used per-cell, avoiding
// the allocation of a lookup set; larger sets build one hash set up
// front, per spec.md §4.1.
func (c *PageColumn[T]) ScanIn(targets []T, limit int) []uint32 {
	if len(targets) == 0 {
		return []uint32{}
	}
	if len(targets) <= 8 {
		return c.scanComparable(limit, func(v T) bool {
			for _, t := range targets {
				if v == t {
					return true
				}
			}
			return false
		})
	}
	set := make(map[T]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	return c.scanComparable(limit, func(v T) bool {
		_, ok := set[v]
		return ok
	})
}

// scanComparable wraps scan's present/absent bookkeeping so ScanXxx
// implementations only have to express the value predicate; an absent
// cell never matches any comparison predicate, per spec.md §4.1.
func (c *PageColumn[T]) scanComparable(limit int, valuePred func(T) bool) []uint32 {
	return c.scan(limit, func(v T, present bool) bool {
		return present && valuePred(v)
	})
}
