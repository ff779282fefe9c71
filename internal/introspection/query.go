// Package introspection fetches, stores and exports schema introspection
// results.
package introspection

import "strings"

// OperationName is the name of the introspection operation.
const OperationName = "IntrospectionQuery"

const queryTemplate = `query IntrospectionQuery {
  __schema {
    description
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types { ...FullType }
    directives {
      name
      description
      locations
      isRepeatable
      args(includeDeprecated: true) { ...InputValue }
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  specifiedByURL
  isOneOf
  fields(includeDeprecated: true) {
    name
    description
    args(includeDeprecated: true) { ...InputValue }
    type { ...TypeRef }
    isDeprecated
    deprecationReason
  }
  inputFields(includeDeprecated: true) { ...InputValue }
  interfaces { ...TypeRef }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes { ...TypeRef }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
  isDeprecated
  deprecationReason
}

fragment TypeRef on __Type {
  kind
  name
  ofType { kind name ofType { kind name ofType { kind name ofType { kind name ofType { kind name ofType { kind name ofType { kind name } } } } } } }
}
`

// Query asks for everything the schema model holds.
var Query = queryTemplate

// LegacyQuery leaves out the fields added to introspection after the
// October 2021 edition of the GraphQL specification and deprecated
// arguments, for servers that reject them.
var LegacyQuery = legacy(queryTemplate)

func legacy(q string) string {
	r := strings.NewReplacer(
		"    description\n    queryType", "    queryType",
		"      isRepeatable\n", "",
		"  specifiedByURL\n", "",
		"  isOneOf\n", "",
		"args(includeDeprecated: true)", "args",
		"inputFields(includeDeprecated: true)", "inputFields",
		"  isDeprecated\n  deprecationReason\n}\n\nfragment TypeRef", "}\n\nfragment TypeRef",
	)
	return r.Replace(q)
}
