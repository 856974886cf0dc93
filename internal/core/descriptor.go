package core

import "portacraft/internal/types"

// parseDownloadDescriptor decodes a {url, size?, sha1?} object from metadata
// into a download entry targeting dst.
func parseDownloadDescriptor(value any, dst string, name string, path string) (types.DownloadEntry, error) {
	obj, err := asObject(value, path)
	if err != nil {
		return types.DownloadEntry{}, err
	}
	url, err := asString(obj["url"], path+"/url")
	if err != nil {
		return types.DownloadEntry{}, err
	}
	entry := types.DownloadEntry{URL: url, Dst: dst, Size: types.SizeUnknown, Name: name}
	if size, ok, err := optInt(obj, "size", path); err != nil {
		return types.DownloadEntry{}, err
	} else if ok {
		entry.Size = size
	}
	if sha1, ok, err := optString(obj, "sha1", path); err != nil {
		return types.DownloadEntry{}, err
	} else if ok {
		entry.Sha1 = sha1
	}
	return entry, nil
}
