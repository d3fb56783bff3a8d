package state

// Reference lists (categories, regions, platforms) are local-only: they seed
// from defaults, travel in the snapshot, and never touch the backend.

// Categories returns a copy of the category list.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories...)
}

// AddCategory appends a category unless it is blank or already present.
func (s *Store) AddCategory(name string) {
	s.addRef(&s.categories, name)
}

// DeleteCategory removes a category by exact name.
func (s *Store) DeleteCategory(name string) {
	s.deleteRef(&s.categories, name)
}

// Regions returns a copy of the region list.
func (s *Store) Regions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.regions...)
}

// AddRegion appends a region unless it is blank or already present.
func (s *Store) AddRegion(name string) {
	s.addRef(&s.regions, name)
}

// DeleteRegion removes a region by exact name.
func (s *Store) DeleteRegion(name string) {
	s.deleteRef(&s.regions, name)
}

// Platforms returns a copy of the platform list.
func (s *Store) Platforms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.platforms...)
}

// AddPlatform appends a platform unless it is blank or already present.
func (s *Store) AddPlatform(name string) {
	s.addRef(&s.platforms, name)
}

// DeletePlatform removes a platform by exact name.
func (s *Store) DeletePlatform(name string) {
	s.deleteRef(&s.platforms, name)
}

func (s *Store) addRef(list *[]string, name string) {
	if name == "" {
		return
	}

	s.mu.Lock()
	for _, existing := range *list {
		if existing == name {
			s.mu.Unlock()
			return
		}
	}
	*list = append(*list, name)
	s.mu.Unlock()
	s.persist()
}

func (s *Store) deleteRef(list *[]string, name string) {
	s.mu.Lock()
	kept := (*list)[:0]
	for _, existing := range *list {
		if existing != name {
			kept = append(kept, existing)
		}
	}
	*list = kept
	s.mu.Unlock()
	s.persist()
}
