package domain

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Int64Ptr returns a pointer to v. Convenient for optional parent ids.
func Int64Ptr(v int64) *int64 {
	return &v
}
