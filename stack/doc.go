// Package stack implements a bounded LIFO stack over raw storage.
//
// Capacity changes come in two explicit forms. Reserve reallocates and
// empties the stack. Resize grows strictly and keeps every element, copying
// into the new block before the old one is freed.
//
// Full and Empty report true for a nil or not yet created stack. Use the
// error from Create, or Created, to tell an unusable stack from a full or
// empty one.
package stack
