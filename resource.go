package ruter

// Resource bundles the conventional routes for one entity type into a
// mountable unit: list and create on the collection, get, update, patch
// and delete on a single id.
type Resource struct {
	name string
	app  *App
}

func NewResource(name string) *Resource {
	return &Resource{
		name: name,
		app:  NewApp(),
	}
}

// Use wraps every route of the resource.
func (r *Resource) Use(wraps ...Wrap) *Resource {
	r.app.Use(wraps...)
	return r
}

func (r *Resource) Create(parts ...Part) *Resource {
	r.app.Post("/", parts...)
	return r
}

func (r *Resource) List(parts ...Part) *Resource {
	r.app.Get("/", parts...)
	return r
}

// Get serves a single entity. The id is the first path segment under the
// mount point.
func (r *Resource) Get(f func(id string) Part) *Resource {
	r.app.Handle(Compose(GET, PathScan("/%s", f)))
	return r
}

func (r *Resource) Update(f func(id string) Part) *Resource {
	r.app.Handle(Compose(PUT, PathScan("/%s", f)))
	return r
}

func (r *Resource) Patch(f func(id string) Part) *Resource {
	r.app.Handle(Compose(PATCH, PathScan("/%s", f)))
	return r
}

func (r *Resource) Delete(f func(id string) Part) *Resource {
	r.app.Handle(Compose(DELETE, PathScan("/%s", f)))
	return r
}

// Part compiles the resource routes, implementing Mountable.
func (r *Resource) Part() Part {
	return r.app.Part()
}

// Name returns the entity name the resource was created with.
func (r *Resource) Name() string {
	return r.name
}
