package util

import (
	"io"

	"github.com/rambollwong/rainbowcat/util"
	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/rambollwong/rainbowsock/core/stream"
)

const (
	defaultBatchSize = 4 << 10 // 4KB

	// MaxPackageSize bounds the payload accepted by ReadPackage.
	MaxPackageSize = 64 << 20 // 64MB
)

// WritePackage writes data to the output stream prefixed with its length encoded as 8 bytes in
// big-endian format, then flushes the stream.
func WritePackage(out stream.OutputStream, data []byte) error {
	lengthBytes := util.IntToBytes(len(data))
	if _, err := out.Write(lengthBytes); err != nil {
		return err
	}
	if len(data) > 0 {
		if _, err := out.Write(data); err != nil {
			return err
		}
	}
	return out.Flush()
}

// ReadPackage reads one package written by WritePackage.
func ReadPackage(in stream.InputStream) ([]byte, error) {
	length, _, err := ReadPackageLength(in)
	if err != nil {
		return nil, err
	}
	if length > MaxPackageSize {
		return nil, ioerr.Newf(ioerr.KindIO, "read package", "package length %d exceeds %d", length, MaxPackageSize)
	}
	return ReadPackageData(in, length)
}

// ReadPackageLength reads the package length from the input stream.
// It expects the length to be encoded as 8 bytes in big-endian format.
// Returns the package length, the length bytes, and any error encountered.
func ReadPackageLength(in stream.InputStream) (uint64, []byte, error) {
	lengthBytes, err := ReadPackageData(in, 8)
	if err != nil {
		return 0, nil, err
	}
	length := util.BytesToUint64(lengthBytes)
	return length, lengthBytes, nil
}

// ReadPackageData reads exactly length bytes from the input stream.
// It reads the data in batches of defaultBatchSize (4KB). Reaching the end of the stream
// before the first byte returns io.EOF, reaching it later fails with io.ErrUnexpectedEOF.
func ReadPackageData(in stream.InputStream, length uint64) ([]byte, error) {
	var readLength uint64
	result := make([]byte, length)
	for readLength < length {
		batchSize := length - readLength
		if batchSize > defaultBatchSize {
			batchSize = defaultBatchSize
		}
		c, err := in.ReadBounded(result, int(readLength), int(batchSize))
		readLength += uint64(c)
		if err == io.EOF && readLength < length {
			if readLength == 0 {
				return nil, io.EOF
			}
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
	}
	return result, nil
}
