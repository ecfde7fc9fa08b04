// Package hamlet provides minimal "to be, or not to be" style test helpers.
package hamlet

import (
	"fmt"
	"reflect"
	"testing"
)

type Matcher struct {
	t        *testing.T
	expected bool
}

func Specifications(t *testing.T) (*Matcher, *Matcher) {
	return &Matcher{t, true}, &Matcher{t, false}
}

func (it *Matcher) verify(outcome bool, form string, details ...interface{}) {
	it.t.Helper()
	if outcome != it.expected {
		it.t.Errorf(form, details...)
	}
}

func (it *Matcher) True(value bool) {
	it.t.Helper()
	it.verify(value, "Expected %v to be %v!", value, it.expected)
}

func (it *Matcher) Nil(value interface{}) {
	it.t.Helper()
	it.verify(isNil(value), "Expected %#v nil condition to be %v!", value, it.expected)
}

func (it *Matcher) Equal(expected, actual interface{}) {
	it.t.Helper()
	it.verify(reflect.DeepEqual(expected, actual), "Expected %#v vs. %#v equality to be %v!", expected, actual, it.expected)
}

func (it *Matcher) Text(expected string, actual interface{}) {
	it.t.Helper()
	it.verify(expected == fmt.Sprintf("%v", actual), "Expected text %q vs. %q equality to be %v!", expected, actual, it.expected)
}

func (it *Matcher) Panic(todo func()) {
	it.t.Helper()
	defer func() {
		it.t.Helper()
		caught := recover()
		it.verify(caught != nil, "Expected panic condition to be %v (caught: %v)!", it.expected, caught)
	}()
	todo()
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return reflected.IsNil()
	}
	return false
}
