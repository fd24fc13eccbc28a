package jsast

// tree-sitter node types shared by the javascript, typescript and tsx grammars.
const (
	NodeCallExpression          = "call_expression"
	NodeMemberExpression        = "member_expression"
	NodeArguments               = "arguments"
	NodeString                  = "string"
	NodeTemplateString          = "template_string"
	NodeTemplateSubstitution    = "template_substitution"
	NodeObject                  = "object"
	NodePair                    = "pair"
	NodeShorthandProperty       = "shorthand_property_identifier"
	NodeSpreadElement           = "spread_element"
	NodeMethodDefinition        = "method_definition"
	NodeComputedPropertyName    = "computed_property_name"
	NodePropertyIdentifier      = "property_identifier"
	NodePrivatePropertyIdent    = "private_property_identifier"
	NodeNumber                  = "number"
	NodeComment                 = "comment"
	NodeParenthesizedExpression = "parenthesized_expression"
	NodeAsExpression            = "as_expression"
	NodeSatisfiesExpression     = "satisfies_expression"
	NodeAwaitExpression         = "await_expression"
)
