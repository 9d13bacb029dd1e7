// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package quotes holds the static quote collection served by the MCP tools.
package quotes

import (
	"errors"
	"math/rand/v2"
	"sync"
)

const (
	CategoryRandom        = "random"
	CategoryInspirational = "inspirational"
)

// ErrEmptyCatalog is returned when a quote is requested from an empty catalog.
var ErrEmptyCatalog = errors.New("quote catalog is empty")

type Quote struct {
	Text   string `json:"quote"`
	Author string `json:"author"`
}

// Catalog is safe for concurrent use.
type Catalog struct {
	quotes []Quote

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCatalog copies quotes into a new catalog. A nil src selects from the
// runtime's global generator.
func NewCatalog(quotes []Quote, src rand.Source) *Catalog {
	c := &Catalog{quotes: append([]Quote(nil), quotes...)}
	if src != nil {
		c.rng = rand.New(src)
	}
	return c
}

// Default returns a catalog over the built-in collection.
func Default() *Catalog {
	return NewCatalog(builtin, nil)
}

func (c *Catalog) Len() int {
	return len(c.quotes)
}

func (c *Catalog) All() []Quote {
	return append([]Quote(nil), c.quotes...)
}

func (c *Catalog) Random() (Quote, error) {
	if len(c.quotes) == 0 {
		return Quote{}, ErrEmptyCatalog
	}
	return c.quotes[c.intN(len(c.quotes))], nil
}

func (c *Catalog) intN(n int) int {
	if c.rng == nil {
		return rand.IntN(n)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}

// ValidCategory reports whether category is accepted by the quote tools.
// Both categories draw from the same pool.
func ValidCategory(category string) bool {
	switch category {
	case CategoryRandom, CategoryInspirational:
		return true
	default:
		return false
	}
}

var builtin = []Quote{
	{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
	{Text: "Innovation distinguishes between a leader and a follower.", Author: "Steve Jobs"},
	{Text: "Life is what happens to you while you're busy making other plans.", Author: "John Lennon"},
	{Text: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt"},
	{Text: "It is during our darkest moments that we must focus to see the light.", Author: "Aristotle"},
	{Text: "The only impossible journey is the one you never begin.", Author: "Tony Robbins"},
	{Text: "Success is not final, failure is not fatal: it is the courage to continue that counts.", Author: "Winston Churchill"},
	{Text: "The way to get started is to quit talking and begin doing.", Author: "Walt Disney"},
	{Text: "Don't be afraid to give up the good to go for the great.", Author: "John D. Rockefeller"},
	{Text: "If you really look closely, most overnight successes took a long time.", Author: "Steve Jobs"},
	{Text: "The greatest glory in living lies not in never falling, but in rising every time we fall.", Author: "Nelson Mandela"},
	{Text: "Your time is limited, don't waste it living someone else's life.", Author: "Steve Jobs"},
	{Text: "Spread love everywhere you go. Let no one ever come to you without leaving happier.", Author: "Mother Teresa"},
	{Text: "When you reach the end of your rope, tie a knot in it and hang on.", Author: "Franklin D. Roosevelt"},
	{Text: "Tell me and I forget. Teach me and I remember. Involve me and I learn.", Author: "Benjamin Franklin"},
	{Text: "The best and most beautiful things in the world cannot be seen or even touched - they must be felt with the heart.", Author: "Helen Keller"},
	{Text: "You will face many defeats in life, but never let yourself be defeated.", Author: "Maya Angelou"},
	{Text: "In the end, we will remember not the words of our enemies, but the silence of our friends.", Author: "Martin Luther King Jr."},
	{Text: "Whether you think you can or you think you can't, you're right.", Author: "Henry Ford"},
	{Text: "The only person you are destined to become is the person you decide to be.", Author: "Ralph Waldo Emerson"},
}
