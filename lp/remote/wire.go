package remote

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"

	"imdpsim/lp"
)

// Programs and results are sent in the protobuf wire format:
//
//	message Program {
//	  repeated Variable variables = 1;
//	  repeated Constraint constraints = 2;
//	  repeated double objective = 3;
//	  int32 direction = 4;
//	}
//	message Variable {
//	  string name = 1;
//	  int32 type = 2;
//	  double lower = 3;
//	  double upper = 4;
//	}
//	message Constraint {
//	  repeated double coeffs = 1;
//	  repeated int32 vars = 2;
//	  int32 relation = 3;
//	  double rhs = 4;
//	}
//	message Result {
//	  int32 result = 1;
//	}
//
// Other messages are plain protobuf messages.

// Response of the Solve method.
type result struct {
	result lp.Result
}

type codec struct{}

func (codec) Name() string {
	return "proto"
}

func (codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case *lp.Program:
		return appendProgram(nil, m), nil
	case *result:
		b := protowire.AppendTag(nil, 1, protowire.VarintType)
		return protowire.AppendVarint(b, uint64(m.result)), nil
	case proto.Message:
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("remote: cannot marshal %T", v)
}

func (codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case *lp.Program:
		m.Reset()
		return consumeProgram(data, m)
	case *result:
		return consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			if num != 1 || typ != protowire.VarintType {
				return skip(num, typ, b)
			}
			x, n := protowire.ConsumeVarint(b)
			m.result = lp.Result(x)
			return n, nil
		})
	case proto.Message:
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("remote: cannot unmarshal into %T", v)
}

func appendDouble(b []byte, x float64) []byte {
	return protowire.AppendFixed64(b, math.Float64bits(x))
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendProgram(b []byte, p *lp.Program) []byte {
	var msg []byte
	for _, v := range p.Variables {
		msg = msg[:0]
		msg = protowire.AppendTag(msg, 1, protowire.BytesType)
		msg = protowire.AppendString(msg, v.Name)
		msg = protowire.AppendTag(msg, 2, protowire.VarintType)
		msg = protowire.AppendVarint(msg, uint64(v.Type))
		msg = protowire.AppendTag(msg, 3, protowire.Fixed64Type)
		msg = appendDouble(msg, v.Lower)
		msg = protowire.AppendTag(msg, 4, protowire.Fixed64Type)
		msg = appendDouble(msg, v.Upper)
		b = appendMessage(b, 1, msg)
	}
	var packed []byte
	for _, c := range p.Constraints {
		msg = msg[:0]
		packed = packed[:0]
		for _, x := range c.Coeffs {
			packed = appendDouble(packed, x)
		}
		msg = appendMessage(msg, 1, packed)
		packed = packed[:0]
		for _, v := range c.Vars {
			packed = protowire.AppendVarint(packed, uint64(v))
		}
		msg = appendMessage(msg, 2, packed)
		msg = protowire.AppendTag(msg, 3, protowire.VarintType)
		msg = protowire.AppendVarint(msg, uint64(c.Relation))
		msg = protowire.AppendTag(msg, 4, protowire.Fixed64Type)
		msg = appendDouble(msg, c.RHS)
		b = appendMessage(b, 2, msg)
	}
	if len(p.Objective) > 0 {
		packed = packed[:0]
		for _, x := range p.Objective {
			packed = appendDouble(packed, x)
		}
		b = appendMessage(b, 3, packed)
	}
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(p.Direction))
}

// Calls field for every field of the message in b. field returns the number
// of bytes of the value it consumed.
func consumeFields(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("remote: %w", protowire.ParseError(n))
		}
		b = b[n:]
		n, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("remote: field %v: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

func skip(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return protowire.ConsumeFieldValue(num, typ, b), nil
}

func consumeDouble(b []byte) (float64, int) {
	x, n := protowire.ConsumeFixed64(b)
	return math.Float64frombits(x), n
}

func consumePackedDoubles(b []byte, dst []float64) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("remote: packed doubles of %v bytes", len(b))
	}
	for len(b) > 0 {
		x, n := consumeDouble(b)
		dst = append(dst, x)
		b = b[n:]
	}
	return dst, nil
}

func consumeProgram(b []byte, p *lp.Program) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			v, err := consumeVariable(msg)
			p.Variables = append(p.Variables, v)
			return n, err
		case num == 2 && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			c, err := consumeConstraint(msg)
			p.Constraints = append(p.Constraints, c)
			return n, err
		case num == 3 && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			var err error
			p.Objective, err = consumePackedDoubles(msg, p.Objective)
			return n, err
		case num == 4 && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			p.Direction = lp.Direction(x)
			return n, nil
		}
		return skip(num, typ, b)
	})
}

func consumeVariable(b []byte) (lp.Variable, error) {
	var v lp.Variable
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			v.Name = s
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			v.Type = lp.VarType(x)
			return n, nil
		case num == 3 && typ == protowire.Fixed64Type:
			x, n := consumeDouble(b)
			v.Lower = x
			return n, nil
		case num == 4 && typ == protowire.Fixed64Type:
			x, n := consumeDouble(b)
			v.Upper = x
			return n, nil
		}
		return skip(num, typ, b)
	})
	return v, err
}

func consumeConstraint(b []byte) (lp.Constraint, error) {
	var c lp.Constraint
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			var err error
			c.Coeffs, err = consumePackedDoubles(msg, c.Coeffs)
			return n, err
		case num == 2 && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			for len(msg) > 0 {
				x, m := protowire.ConsumeVarint(msg)
				if m < 0 {
					return m, nil
				}
				c.Vars = append(c.Vars, int(x))
				msg = msg[m:]
			}
			return n, nil
		case num == 3 && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			c.Relation = lp.Relation(x)
			return n, nil
		case num == 4 && typ == protowire.Fixed64Type:
			x, n := consumeDouble(b)
			c.RHS = x
			return n, nil
		}
		return skip(num, typ, b)
	})
	return c, err
}
