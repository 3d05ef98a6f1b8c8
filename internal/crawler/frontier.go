package crawler

// frame is one expanded page and the position of its next unexplored link.
type frame struct {
	page  string
	links []string
	next  int
}

// frontier is the explicit stack behind the depth-first walk. Popping links
// from the top frame reproduces the order of a recursive traversal that
// explores each link fully before moving to its next sibling.
type frontier struct {
	frames []*frame
}

func (f *frontier) push(page string, links []string) {
	f.frames = append(f.frames, &frame{page: page, links: links})
}

// pop returns the next link to explore, discarding exhausted frames.
func (f *frontier) pop() (link, parent string, ok bool) {
	for len(f.frames) > 0 {
		top := f.frames[len(f.frames)-1]
		if top.next < len(top.links) {
			link = top.links[top.next]
			top.next++
			return link, top.page, true
		}
		f.frames = f.frames[:len(f.frames)-1]
	}
	return "", "", false
}

func (f *frontier) depth() int {
	return len(f.frames)
}
