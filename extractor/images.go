package extractor

// PageHasImages reports whether page i references an image XObject in its
// (possibly inherited) resources. Any failure while walking the object graph
// reads as "no images".
func (d *Document) PageHasImages(i int) (found bool) {
	defer func() {
		if recover() != nil {
			found = false
		}
	}()
	page, err := d.page(i)
	if err != nil || page.V.IsNull() {
		return false
	}
	xobjects := page.Resources().Key("XObject")
	if xobjects.IsNull() {
		return false
	}
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			return true
		}
	}
	return false
}
