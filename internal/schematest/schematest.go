// Package schematest provides schema fixtures shared by package tests.
package schematest

import (
	"testing"

	"github.com/hanpama/qlient/internal/schema"
)

// StarWarsSDL is a small schema with every type kind, interfaces, a union,
// nested arguments and all three root types.
const StarWarsSDL = `
type Query {
  film(id: ID, filmID: ID): Film
  allFilms(first: Int, after: String): FilmsConnection
  node(id: ID!): Node
  hero(episode: Episode = NEWHOPE): Character
  search(text: String!): [SearchResult!]!
  filmsByIDs(ids: [ID!]!): [Film]
  greeting: String
}

type Mutation {
  createReview(episode: Episode!, review: ReviewInput!): Review
}

type Subscription {
  reviewAdded(episode: Episode): Review
}

interface Node {
  id: ID!
}

interface Character implements Node {
  id: ID!
  name: String!
  friends(first: Int): [Character]
}

type Human implements Node & Character {
  id: ID!
  name: String!
  height(unit: LengthUnit = METER): Float
  friends(first: Int): [Character]
  homePlanet: String
}

type Droid implements Node & Character {
  id: ID!
  name: String!
  friends(first: Int): [Character]
  primaryFunction: String
}

type Film implements Node {
  id: ID!
  title: String
  episodeID: Int
  director: String
  episode: Episode
  characterConnection(first: Int, after: String): FilmCharactersConnection
}

type FilmCharactersConnection {
  totalCount: Int
  characters: [Character]
}

type FilmsConnection {
  totalCount: Int
  films: [Film]
}

union SearchResult = Human | Droid | Film

enum Episode {
  NEWHOPE
  EMPIRE
  JEDI
}

enum LengthUnit {
  METER
  FOOT
}

input ReviewInput {
  stars: Int!
  commentary: String
}

type Review {
  episode: Episode
  stars: Int!
  commentary: String
}
`

// CyclicSDL declares two object types that reference each other.
const CyclicSDL = `
type Query {
  a: A
}

type A {
  id: ID
  b: B
}

type B {
  name: String
  a: A
}
`

// MustBuild builds a schema from SDL or fails the test.
func MustBuild(t testing.TB, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	return s
}

// StarWars returns the StarWarsSDL schema.
func StarWars(t testing.TB) *schema.Schema { return MustBuild(t, StarWarsSDL) }

// Cyclic returns the CyclicSDL schema.
func Cyclic(t testing.TB) *schema.Schema { return MustBuild(t, CyclicSDL) }
