package colors

// Aggregate joins color groups back to their detections' classes,
// producing one Record per group in group-creation order. classIDs must
// be aligned with the color sequence the groups were built from; each
// group's class comes from its founding detection. Ids missing from the
// name map resolve to UnknownClass rather than failing. Groups that end
// up with identical (class, color) stay separate records.
func Aggregate(groups []Group, classIDs []int, classNames map[int]string) []Record {
	records := make([]Record, 0, len(groups))
	for _, g := range groups {
		name := UnknownClass
		if n, ok := classNames[classIDs[g.Index]]; ok {
			name = n
		}
		records = append(records, Record{
			ClassName: name,
			Quantity:  g.Count,
			Color:     g.Representative,
		})
	}
	return records
}
