package core

// MergeMetadata merges src into dst, where dst holds higher-priority (child)
// keys. Keys absent from dst are taken from src. When both hold objects the
// merge recurses; when both hold lists the result is the dst list followed by
// the src list (child entries first). Type conflicts keep the dst value.
func MergeMetadata(dst map[string]any, src map[string]any) {
	for key, srcValue := range src {
		dstValue, ok := dst[key]
		if !ok {
			dst[key] = srcValue
			continue
		}
		dstObj, dstIsObj := dstValue.(map[string]any)
		srcObj, srcIsObj := srcValue.(map[string]any)
		if dstIsObj && srcIsObj {
			MergeMetadata(dstObj, srcObj)
			continue
		}
		dstList, dstIsList := dstValue.([]any)
		srcList, srcIsList := srcValue.([]any)
		if dstIsList && srcIsList {
			merged := make([]any, 0, len(dstList)+len(srcList))
			merged = append(merged, dstList...)
			merged = append(merged, srcList...)
			dst[key] = merged
		}
	}
}
