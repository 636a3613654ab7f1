package serializer

import (
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	// registers google/protobuf/timestamp.proto in protoregistry.GlobalFiles
	_ "google.golang.org/protobuf/types/known/timestamppb"
)

// Field numbers of the Protobuf schema:
//
//	message Person {
//	  int32 id = 1;
//	  bytes transport_id = 2;
//	  string name = 3;
//	  int32 sequence_id = 4;
//	  repeated int32 credit_cards = 5;
//	  int32 age = 6;
//	  repeated string phones = 7;
//	  google.protobuf.Timestamp birth_date = 8;
//	  double salary = 9;
//	  bool is_married = 10;
//	}
//	message PersonList { repeated Person persons = 1; }
//
//	message Address { int32 value1 = 1; double value2 = 2; bool value3 = 3; }
//	message LegacyPerson {
//	  int32 id = 1;
//	  string name = 2;
//	  Address address = 3;
//	  repeated int32 phones = 4;
//	}
//	message LegacyPersonList { repeated LegacyPerson persons = 1; }
const (
	pbListPersons = 1

	pbPersonID          = 1
	pbPersonTransportID = 2
	pbPersonName        = 3
	pbPersonSequenceID  = 4
	pbPersonCreditCards = 5
	pbPersonAge         = 6
	pbPersonPhones      = 7
	pbPersonBirthDate   = 8
	pbPersonSalary      = 9
	pbPersonIsMarried   = 10

	pbTimestampSeconds = 1
	pbTimestampNanos   = 2

	pbLegacyID      = 1
	pbLegacyName    = 2
	pbLegacyAddress = 3
	pbLegacyPhones  = 4

	pbAddressValue1 = 1
	pbAddressValue2 = 2
	pbAddressValue3 = 3
)

const (
	pbFileName = "sercompare/persons.proto"
	pbPackage  = "sercompare.v1"
)

// personsFile builds the schema once, resolving the Timestamp import
// against the global registry.
var personsFile = sync.OnceValues(func() (protoreflect.FileDescriptor, error) {
	return protodesc.NewFile(personsFileProto(), protoregistry.GlobalFiles)
})

func personsFileProto() *descriptorpb.FileDescriptorProto {
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED

		int32T   = descriptorpb.FieldDescriptorProto_TYPE_INT32
		bytesT   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
		stringT  = descriptorpb.FieldDescriptorProto_TYPE_STRING
		doubleT  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
		boolT    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
		messageT = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)
	ref := func(name string) string { return "." + pbPackage + "." + name }

	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(pbFileName),
		Package:    proto.String(pbPackage),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/timestamp.proto"},
		MessageType: []*descriptorpb.DescriptorProto{
			pbMessage("Person",
				pbField("id", pbPersonID, optional, int32T, ""),
				pbField("transport_id", pbPersonTransportID, optional, bytesT, ""),
				pbField("name", pbPersonName, optional, stringT, ""),
				pbField("sequence_id", pbPersonSequenceID, optional, int32T, ""),
				pbField("credit_cards", pbPersonCreditCards, repeated, int32T, ""),
				pbField("age", pbPersonAge, optional, int32T, ""),
				pbField("phones", pbPersonPhones, repeated, stringT, ""),
				pbField("birth_date", pbPersonBirthDate, optional, messageT, ".google.protobuf.Timestamp"),
				pbField("salary", pbPersonSalary, optional, doubleT, ""),
				pbField("is_married", pbPersonIsMarried, optional, boolT, ""),
			),
			pbMessage("PersonList",
				pbField("persons", pbListPersons, repeated, messageT, ref("Person")),
			),
			pbMessage("Address",
				pbField("value1", pbAddressValue1, optional, int32T, ""),
				pbField("value2", pbAddressValue2, optional, doubleT, ""),
				pbField("value3", pbAddressValue3, optional, boolT, ""),
			),
			pbMessage("LegacyPerson",
				pbField("id", pbLegacyID, optional, int32T, ""),
				pbField("name", pbLegacyName, optional, stringT, ""),
				pbField("address", pbLegacyAddress, optional, messageT, ref("Address")),
				pbField("phones", pbLegacyPhones, repeated, int32T, ""),
			),
			pbMessage("LegacyPersonList",
				pbField("persons", pbListPersons, repeated, messageT, ref("LegacyPerson")),
			),
		},
	}
}

func pbMessage(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

func pbField(name string, num int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}
