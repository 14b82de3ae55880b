// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ikmak/bsonwire/bson"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const streamLength = 16

var (
	flatDocument = makeFlatDocument()
	deepDocument = makeDeepDocument(32)
	fullDocument = makeFullDocument()

	flatDocumentSize = mustSize(flatDocument)
	deepDocumentSize = mustSize(deepDocument)
	fullDocumentSize = mustSize(fullDocument)
)

// utility functions for the bson benchmarks

func makeFlatDocument() *bson.Document {
	doc := bson.NewDocument()
	for i := 0; i < 24; i++ {
		switch i % 4 {
		case 0:
			doc.Append(fmt.Sprintf("str%d", i), bson.VC.String("the quick brown fox jumps over the lazy dog"))
		case 1:
			doc.Append(fmt.Sprintf("int%d", i), bson.VC.Int32(int32(i*1000)))
		case 2:
			doc.Append(fmt.Sprintf("dbl%d", i), bson.VC.Double(float64(i)+0.125))
		default:
			doc.Append(fmt.Sprintf("bool%d", i), bson.VC.Boolean(i%8 == 3))
		}
	}
	return doc
}

func makeDeepDocument(depth int) *bson.Document {
	doc := bson.NewDocument(bson.EC.String("leaf", "bottom"))
	for i := 0; i < depth; i++ {
		doc = bson.NewDocument(
			bson.EC.Int32("level", int32(depth-i)),
			bson.EC.SubDocument("child", doc),
		)
	}
	return doc
}

func makeFullDocument() *bson.Document {
	var oid bson.ObjectID
	copy(oid[:], "0123456789ab")
	return bson.NewDocument(
		bson.EC.Double("double", 3.141592653589793),
		bson.EC.String("string", "full document"),
		bson.EC.SubDocumentFromElements("document", bson.EC.String("a", "b"), bson.EC.Int64("n", 1<<40)),
		bson.EC.ArrayFromValues("array", bson.VC.Int32(1), bson.VC.String("two"), bson.VC.Double(3.5), bson.VC.Null()),
		bson.EC.Binary("binary", []byte("binary payload")),
		bson.EC.BinaryWithSubtype("uuid", []byte("0123456789abcdef"), bson.TypeBinaryUUID),
		bson.EC.ObjectID("_id", oid),
		bson.EC.Boolean("bool", true),
		bson.EC.DateTime("date", 1514764800000),
		bson.EC.Null("null"),
		bson.EC.Regex("regex", "^ab+c$", "im"),
		bson.EC.DBPointer("pointer", "db.coll", oid),
		bson.EC.JavaScript("code", "function() { return 1; }"),
		bson.EC.Symbol("symbol", "sym"),
		bson.EC.CodeWithScope("scoped", "function() { return x; }", bson.NewDocument(bson.EC.Int32("x", 1))),
		bson.EC.Int32("int32", 42),
		bson.EC.Timestamp("ts", 1514764800, 1),
		bson.EC.Int64("int64", 1<<60),
		bson.EC.Decimal128("decimal", bson.NewDecimal128(0x3040000000000000, 12345)),
		bson.EC.MinKey("min"),
		bson.EC.MaxKey("max"),
	)
}

func mustSize(doc *bson.Document) int {
	size, err := bson.CalculateSize(doc)
	if err != nil {
		panic(err)
	}
	return size
}

func bsonEncoding(ctx context.Context, tm TimerManager, iters int, doc *bson.Document) error {
	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		if i%hundred == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		out, err := bson.Serialize(doc)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("serializing document returned no bytes")
		}
	}
	return nil
}

func bsonDecoding(ctx context.Context, tm TimerManager, iters int, doc *bson.Document) error {
	raw, err := bson.Serialize(doc)
	if err != nil {
		return err
	}

	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		if i%hundred == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		out, err := bson.Deserialize(raw)
		if err != nil {
			return err
		}
		if out.Document().Len() != doc.Len() {
			return errors.Errorf("decoded %d elements, expected %d", out.Document().Len(), doc.Len())
		}
	}
	return nil
}

func BSONFlatDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonEncoding(ctx, tm, iters, flatDocument)
}

func BSONFlatDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonDecoding(ctx, tm, iters, flatDocument)
}

func BSONDeepDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonEncoding(ctx, tm, iters, deepDocument)
}

func BSONDeepDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonDecoding(ctx, tm, iters, deepDocument)
}

func BSONFullDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonEncoding(ctx, tm, iters, fullDocument)
}

func BSONFullDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonDecoding(ctx, tm, iters, fullDocument)
}

// BSONFlatMapEncoding encodes the flat document from a native map, which adds the reflection
// walk and key sorting to the encode cost.
func BSONFlatMapEncoding(ctx context.Context, tm TimerManager, iters int) error {
	m := bson.M{}
	for _, elem := range flatDocument.Elements() {
		v := elem.Value
		switch v.Type() {
		case bson.TypeString:
			m[elem.Key] = v.StringValue()
		case bson.TypeInt32:
			m[elem.Key] = v.Int32()
		case bson.TypeDouble:
			m[elem.Key] = v.Double()
		case bson.TypeBoolean:
			m[elem.Key] = v.Boolean()
		}
	}

	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		if i%hundred == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := bson.Serialize(m); err != nil {
			return err
		}
	}
	return nil
}

// BSONFlatSerializeInto writes the flat document repeatedly into one preallocated buffer.
func BSONFlatSerializeInto(ctx context.Context, tm TimerManager, iters int) error {
	buf := make([]byte, flatDocumentSize)

	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		if i%hundred == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := bson.SerializeInto(buf, flatDocument, 0)
		if err != nil {
			return err
		}
		if n != flatDocumentSize {
			return errors.Errorf("wrote up to offset %d, expected %d", n, flatDocumentSize)
		}
	}
	return nil
}

// BSONStreamDecoding decodes streamLength concatenated copies of the flat document per iteration.
func BSONStreamDecoding(ctx context.Context, tm TimerManager, iters int) error {
	one, err := bson.Serialize(flatDocument)
	if err != nil {
		return err
	}
	stream := make([]byte, 0, len(one)*streamLength)
	for i := 0; i < streamLength; i++ {
		stream = append(stream, one...)
	}
	docs := make([]bson.Value, streamLength)

	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		next, err := bson.DeserializeStream(stream, 0, streamLength, docs, 0)
		if err != nil {
			return err
		}
		if next != len(stream) {
			return errors.Errorf("stream stopped at offset %d of %d", next, len(stream))
		}
	}
	return nil
}

// BSONParallelEncoding splits the iterations across one goroutine per CPU, all encoding the same
// document.
func BSONParallelEncoding(ctx context.Context, tm TimerManager, iters int) error {
	workers := runtime.GOMAXPROCS(0)
	g, ctx := errgroup.WithContext(ctx)

	tm.ResetTimer()
	start := time.Now()
	for w := 0; w < workers; w++ {
		n := iters / workers
		if w < iters%workers {
			n++
		}
		g.Go(func() error {
			return bsonEncoding(ctx, stopwatch{}, n, flatDocument)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrapf(err, "parallel encoding failed after %s", time.Since(start))
	}
	return nil
}
