package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// numberScale is the number of decimal places kept for stored numerics,
// matching the DECIMAL(38,9) projections of the report query.
const numberScale = 9

// Number is a fixed-point decimal DynamoDB attribute.
//
// DynamoDB rejects IEEE floats with surplus precision, so every numeric
// field of a stored record goes through this type: the float is rounded to
// numberScale places and serialized as a decimal string.
type Number struct {
	decimal.Decimal
}

// NewNumber converts a float to its fixed-point stored form.
func NewNumber(f float64) Number {
	return Number{decimal.NewFromFloat(f).Round(numberScale)}
}

// Float64 converts the stored value back to a float.
func (n Number) Float64() float64 {
	f, _ := n.Decimal.Float64()
	return f
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler.
func (n Number) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: n.Decimal.String()}, nil
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler.
func (n *Number) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	member, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return fmt.Errorf("expected number attribute, got %T", av)
	}
	d, err := decimal.NewFromString(member.Value)
	if err != nil {
		return fmt.Errorf("parse number attribute %q: %w", member.Value, err)
	}
	n.Decimal = d
	return nil
}
